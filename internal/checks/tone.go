package checks

import (
	"fmt"
	"math"

	"ContentGate/internal/domain"
	"ContentGate/internal/signals"
)

// Tone scores how close the draft's style signals are to the averaged
// signals of the baseline corpus. It is a statistical proxy for "sounds like
// the same author", not semantic analysis.
//
// An empty baseline falls back to the draft itself, so an author's first
// reviewed draft always scores 100.
func Tone(draft string, baseline []string, opts Options) domain.ToneCheck {
	opts = opts.withDefaults()
	if len(baseline) == 0 {
		baseline = []string{draft}
	}

	draftSignals := signals.Extract(draft)
	corpus := make([]signals.Signals, 0, len(baseline))
	for _, text := range baseline {
		corpus = append(corpus, signals.Extract(text))
	}
	baseSignals := signals.Average(corpus)

	score := ToneScore(draftSignals, baseSignals)
	result := domain.ToneCheck{
		Passed:   score >= opts.ToneThreshold,
		Score:    score,
		Draft:    draftSignals,
		Baseline: baseSignals,
		Warnings: []string{},
	}
	if !result.Passed {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("tone similarity %d is below %d", score, opts.ToneThreshold))
	}
	return result
}

// ToneScore averages per-component closeness and scales it to 0..100.
func ToneScore(draft, baseline signals.Signals) int {
	d, b := draft.Components(), baseline.Components()
	total := 0.0
	for i := range d {
		total += closeness(d[i], b[i])
	}
	return int(math.Round(total / float64(len(d)) * 100))
}

func closeness(draft, baseline float64) float64 {
	denom := math.Abs(baseline)
	if denom == 0 {
		denom = 1
	}
	return math.Max(0, 1-math.Min(1, math.Abs(draft-baseline)/denom))
}
