package checks

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"ContentGate/internal/domain"
)

const (
	IssueTooManyEmojis    = "too many emojis"
	IssueWallOfText       = "wall of text"
	IssueAllCaps          = "contains ALL CAPS sentence(s)"
	IssueHashtagPlacement = "hashtags should be grouped at the end"

	minCapsSentence = 9
	minCapsLetters  = 5
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n`)
	hashtagExpr    = regexp.MustCompile(`(?:^|\s)(#[\p{L}\p{N}_]+)`)
	tagOrMention   = regexp.MustCompile(`[#@][\p{L}\p{N}_]+`)
)

// Formatting applies layout heuristics to the raw body.
func Formatting(body string, opts Options) domain.FormattingCheck {
	opts = opts.withDefaults()
	issues := make([]string, 0)

	if CountEmojis(body) > opts.EmojiLimit {
		issues = append(issues, IssueTooManyEmojis)
	}
	if utf8.RuneCountInString(body) > opts.WallOfTextLength && Paragraphs(body) < 2 {
		issues = append(issues, IssueWallOfText)
	}
	if HasAllCapsSentence(body) {
		issues = append(issues, IssueAllCaps)
	}
	if HashtagsScattered(body) {
		issues = append(issues, IssueHashtagPlacement)
	}

	return domain.FormattingCheck{
		Passed:   len(issues) == 0,
		Issues:   issues,
		Warnings: []string{},
	}
}

// CountEmojis counts runes in the common pictograph and symbol blocks.
func CountEmojis(text string) int {
	n := 0
	for _, r := range text {
		if isEmoji(r) {
			n++
		}
	}
	return n
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	}
	return false
}

// Paragraphs counts non-empty blocks separated by blank lines.
func Paragraphs(text string) int {
	n := 0
	for _, block := range paragraphBreak.Split(text, -1) {
		if strings.TrimSpace(block) != "" {
			n++
		}
	}
	return n
}

// HasAllCapsSentence reports whether any sentence is a long run of capitals.
// Hashtags and mentions are ignored so a closing tag line is not shouting.
func HasAllCapsSentence(text string) bool {
	pieces := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	for _, piece := range pieces {
		piece = strings.TrimSpace(tagOrMention.ReplaceAllString(piece, ""))
		if utf8.RuneCountInString(piece) < minCapsSentence {
			continue
		}
		letters := 0
		shouting := true
		for _, r := range piece {
			if !unicode.IsLetter(r) {
				continue
			}
			letters++
			if unicode.IsLower(r) {
				shouting = false
				break
			}
		}
		if shouting && letters >= minCapsLetters {
			return true
		}
	}
	return false
}

// HashtagsScattered is true when there is more than one hashtag and at least
// one of them starts before the final quarter of the text.
func HashtagsScattered(text string) bool {
	matches := hashtagExpr.FindAllStringSubmatchIndex(text, -1)
	if len(matches) < 2 {
		return false
	}
	cutoff := len(text) * 3 / 4
	for _, m := range matches {
		if m[2] < cutoff {
			return true
		}
	}
	return false
}
