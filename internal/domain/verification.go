package domain

import (
	"math"
	"time"

	"ContentGate/internal/signals"
)

// IssueReason is a machine-readable tag for a failed check.
type IssueReason string

const (
	IssueCharacterLimit IssueReason = "character_limit"
	IssueBrokenLinks    IssueReason = "broken_links"
	IssueToneMismatch   IssueReason = "tone_mismatch"
	IssueFormatting     IssueReason = "formatting"
)

// CharacterCheck is the outcome of the platform length check.
type CharacterCheck struct {
	Passed   bool     `json:"passed"`
	Count    int      `json:"count"`
	Limit    int      `json:"limit"`
	Warnings []string `json:"warnings"`
}

// LinkCheck is the outcome of probing every URL in the body.
type LinkCheck struct {
	Passed   bool     `json:"passed"`
	URLs     []string `json:"urls"`
	Broken   []string `json:"broken"`
	Warnings []string `json:"warnings"`
}

// ToneCheck compares the draft's style signals with the author's baseline.
type ToneCheck struct {
	Passed   bool            `json:"passed"`
	Score    int             `json:"score"`
	Draft    signals.Signals `json:"draft"`
	Baseline signals.Signals `json:"baseline"`
	Warnings []string        `json:"warnings"`
}

// FormattingCheck lists layout heuristics the body violates.
type FormattingCheck struct {
	Passed   bool     `json:"passed"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// CheckResults holds one result per check module. Aggregation below reads
// every field by name, so a new check must be added to each method.
type CheckResults struct {
	CharacterCount CharacterCheck  `json:"characterCount"`
	Links          LinkCheck       `json:"links"`
	Tone           ToneCheck       `json:"tone"`
	Formatting     FormattingCheck `json:"formatting"`
}

// Passed is true only when all four checks passed.
func (c CheckResults) Passed() bool {
	return c.CharacterCount.Passed && c.Links.Passed && c.Tone.Passed && c.Formatting.Passed
}

// Score weighs each check a quarter; tone contributes its score fractionally.
// A perfect 100 is reserved for four passes with a tone score of 100.
func (c CheckResults) Score() int {
	raw := quarter(c.CharacterCount.Passed) +
		quarter(c.Links.Passed) +
		25*float64(clampPercent(c.Tone.Score))/100 +
		quarter(c.Formatting.Passed)

	score := int(math.Round(raw))
	if score >= 100 && !(c.Passed() && c.Tone.Score >= 100) {
		score = 99
	}
	return clampPercent(score)
}

// IssueReasons returns the tags of failed checks in a stable order.
func (c CheckResults) IssueReasons() []IssueReason {
	reasons := make([]IssueReason, 0, 4)
	if !c.CharacterCount.Passed {
		reasons = append(reasons, IssueCharacterLimit)
	}
	if !c.Links.Passed {
		reasons = append(reasons, IssueBrokenLinks)
	}
	if !c.Tone.Passed {
		reasons = append(reasons, IssueToneMismatch)
	}
	if !c.Formatting.Passed {
		reasons = append(reasons, IssueFormatting)
	}
	return reasons
}

func quarter(passed bool) float64 {
	if passed {
		return 25
	}
	return 0
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// VerificationRecord is an immutable snapshot of one verification run.
// Only the override fields are ever written after creation.
type VerificationRecord struct {
	ID            string        `json:"id"`
	ContentID     string        `json:"contentId"`
	AuthorID      string        `json:"authorId"`
	Run           int64         `json:"run"`
	VerifiedAt    time.Time     `json:"verifiedAt"`
	Checks        CheckResults  `json:"checks"`
	OverallPassed bool          `json:"overallPassed"`
	OverallScore  int           `json:"overallScore"`
	IssueReasons  []IssueReason `json:"issueReasons"`

	Overridden   bool       `json:"overridden,omitempty"`
	OverriddenBy *string    `json:"overriddenBy,omitempty"`
	OverriddenAt *time.Time `json:"overriddenAt,omitempty"`
}

// Status maps the record onto the cached content status.
func (r VerificationRecord) Status() VerificationStatus {
	switch {
	case r.Overridden:
		return VerificationOverridden
	case r.OverallPassed:
		return VerificationPassed
	default:
		return VerificationFailed
	}
}

// VerificationFilter narrows record listings. Empty fields match everything.
type VerificationFilter struct {
	AuthorID  string
	ContentID string
	Limit     int
}

// VerificationJob asks the orchestrator to verify one content item.
// Jobs for the same item carry no ordering guarantee.
type VerificationJob struct {
	ContentID  string    `json:"contentId"`
	Run        int64     `json:"run"`
	Reason     string    `json:"reason"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}
