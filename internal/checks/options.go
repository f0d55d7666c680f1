// Package checks implements the four content checks run by the verification
// orchestrator. Apart from Links, which goes through a prober, every check is a
// pure function of its input.
package checks

import "time"

// Options tunes check thresholds.
type Options struct {
	ShortPostLimit   int
	LongFormLimit    int
	LongFormAdvisory int
	ToneThreshold    int
	EmojiLimit       int
	WallOfTextLength int
	LinkConcurrency  int
	LinkTimeout      time.Duration
}

// DefaultOptions returns the thresholds used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ShortPostLimit:   280,
		LongFormLimit:    3000,
		LongFormAdvisory: 1300,
		ToneThreshold:    70,
		EmojiLimit:       3,
		WallOfTextLength: 240,
		LinkConcurrency:  4,
		LinkTimeout:      5 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ShortPostLimit <= 0 {
		o.ShortPostLimit = def.ShortPostLimit
	}
	if o.LongFormLimit <= 0 {
		o.LongFormLimit = def.LongFormLimit
	}
	if o.LongFormAdvisory <= 0 {
		o.LongFormAdvisory = def.LongFormAdvisory
	}
	if o.ToneThreshold <= 0 {
		o.ToneThreshold = def.ToneThreshold
	}
	if o.EmojiLimit <= 0 {
		o.EmojiLimit = def.EmojiLimit
	}
	if o.WallOfTextLength <= 0 {
		o.WallOfTextLength = def.WallOfTextLength
	}
	if o.LinkConcurrency <= 0 {
		o.LinkConcurrency = def.LinkConcurrency
	}
	if o.LinkTimeout <= 0 {
		o.LinkTimeout = def.LinkTimeout
	}
	return o
}
