// Package signals turns raw text into numeric style features used by the
// tone check. Everything here is a pure function of its input.
package signals

import (
	"strings"
	"unicode"
)

// Signals are cheap stylistic features of a piece of text.
type Signals struct {
	Words            float64 `json:"words"`
	FirstPersonRatio float64 `json:"firstPersonRatio"`
	QuestionRatio    float64 `json:"questionRatio"`
	ExclamationRatio float64 `json:"exclamationRatio"`
}

var firstPerson = map[string]bool{
	"i": true, "me": true, "my": true, "mine": true, "myself": true,
	"we": true, "us": true, "our": true, "ours": true, "ourselves": true,
	"i'm": true, "i've": true, "i'd": true, "i'll": true,
	"we're": true, "we've": true, "we'd": true, "we'll": true,
}

// Extract computes the style signals of text. Ratios of punctuation are per
// sentence, with the sentence count clamped to at least one.
func Extract(text string) Signals {
	words := strings.Fields(text)

	pronouns := 0
	for _, w := range words {
		if firstPerson[normalizeWord(w)] {
			pronouns++
		}
	}

	sentences := float64(SentenceCount(text))
	out := Signals{
		Words:            float64(len(words)),
		QuestionRatio:    float64(strings.Count(text, "?")) / sentences,
		ExclamationRatio: float64(strings.Count(text, "!")) / sentences,
	}
	if len(words) > 0 {
		out.FirstPersonRatio = float64(pronouns) / float64(len(words))
	}
	return out
}

// Average returns the component-wise mean of the given signals.
func Average(all []Signals) Signals {
	if len(all) == 0 {
		return Signals{}
	}
	var sum Signals
	for _, s := range all {
		sum.Words += s.Words
		sum.FirstPersonRatio += s.FirstPersonRatio
		sum.QuestionRatio += s.QuestionRatio
		sum.ExclamationRatio += s.ExclamationRatio
	}
	n := float64(len(all))
	return Signals{
		Words:            sum.Words / n,
		FirstPersonRatio: sum.FirstPersonRatio / n,
		QuestionRatio:    sum.QuestionRatio / n,
		ExclamationRatio: sum.ExclamationRatio / n,
	}
}

// Components lists the signals in a fixed order for comparison.
func (s Signals) Components() [4]float64 {
	return [4]float64{s.Words, s.FirstPersonRatio, s.QuestionRatio, s.ExclamationRatio}
}

// SentenceCount counts non-empty runs of text between terminators, minimum 1.
func SentenceCount(text string) int {
	count := 0
	for _, part := range Sentences(text) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	if count < 1 {
		return 1
	}
	return count
}

// Sentences splits text on '.', '!' and '?' runs. Empty pieces are dropped.
func Sentences(text string) []string {
	parts := strings.FieldsFunc(text, isTerminator)
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func normalizeWord(w string) string {
	w = strings.ToLower(w)
	w = strings.ReplaceAll(w, "’", "'")
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}
