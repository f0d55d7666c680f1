package domain

import (
	"fmt"
	"time"
)

// ContentType tells the checks which platform rules apply to a draft.
type ContentType string

const (
	ContentShortPost   ContentType = "shortPost"
	ContentEmail       ContentType = "email"
	ContentBlogPost    ContentType = "blogPost"
	ContentLandingPage ContentType = "landingPage"
	ContentOther       ContentType = "other"
)

var validContentTypes = map[ContentType]bool{
	ContentShortPost:   true,
	ContentEmail:       true,
	ContentBlogPost:    true,
	ContentLandingPage: true,
	ContentOther:       true,
}

// ParseContentType validates a raw content type string.
func ParseContentType(raw string) (ContentType, error) {
	t := ContentType(raw)
	if !validContentTypes[t] {
		return "", fmt.Errorf("%w: %q", ErrInvalidContentType, raw)
	}
	return t, nil
}

// Stage is the position of a content item in its approval lifecycle.
type Stage string

const (
	StageIdea      Stage = "idea"
	StageReview    Stage = "review"
	StageApproved  Stage = "approved"
	StagePublished Stage = "published"
)

var validStages = map[Stage]bool{
	StageIdea:      true,
	StageReview:    true,
	StageApproved:  true,
	StagePublished: true,
}

// ParseStage validates a raw stage string.
func ParseStage(raw string) (Stage, error) {
	s := Stage(raw)
	if !validStages[s] {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, raw)
	}
	return s, nil
}

// VerificationStatus mirrors the verdict of the latest verification record.
type VerificationStatus string

const (
	VerificationPending    VerificationStatus = "pending"
	VerificationPassed     VerificationStatus = "passed"
	VerificationFailed     VerificationStatus = "failed"
	VerificationOverridden VerificationStatus = "overridden"
)

// ContentItem is a marketing draft moving through the review gate.
//
// VerificationStatus and VerificationScore are caches of the latest
// VerificationRecord and are only meaningful once the item has been in review.
type ContentItem struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Body         string      `json:"body"`
	ContentType  ContentType `json:"contentType"`
	Stage        Stage       `json:"stage"`
	CreatedBy    string      `json:"createdBy"`
	AssignedTo   string      `json:"assignedTo"`
	Notes        *string     `json:"notes,omitempty"`
	PublishedURL *string     `json:"publishedUrl,omitempty"`

	VerificationStatus      *VerificationStatus `json:"verificationStatus,omitempty"`
	VerificationScore       *int                `json:"verificationScore,omitempty"`
	VerificationRun         int64               `json:"verificationRun"`
	VerificationRequestedAt *time.Time          `json:"verificationRequestedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ArmVerification resets the cached verdict to pending and bumps the run
// number. The returned run identifies the verification job to schedule.
func (c *ContentItem) ArmVerification(now time.Time) int64 {
	pending := VerificationPending
	c.VerificationStatus = &pending
	c.VerificationScore = nil
	c.VerificationRun++
	c.VerificationRequestedAt = &now
	return c.VerificationRun
}

// ContentEdit carries optional field updates; nil means "leave unchanged".
type ContentEdit struct {
	Title       *string
	Body        *string
	Notes       *string
	ContentType *ContentType
}

// Apply writes the edit into the item and reports whether a field that
// affects verification (title, body, type) actually changed.
func (e ContentEdit) Apply(item *ContentItem) bool {
	meaningful := false
	if e.Title != nil && *e.Title != item.Title {
		item.Title = *e.Title
		meaningful = true
	}
	if e.Body != nil && *e.Body != item.Body {
		item.Body = *e.Body
		meaningful = true
	}
	if e.ContentType != nil && *e.ContentType != item.ContentType {
		item.ContentType = *e.ContentType
		meaningful = true
	}
	if e.Notes != nil {
		notes := *e.Notes
		item.Notes = &notes
	}
	return meaningful
}

// ContentFilter narrows content listings. Empty fields match everything.
type ContentFilter struct {
	Stage     Stage
	CreatedBy string
	// Status filters on the cached verification status.
	Status VerificationStatus
	// RequestedBefore keeps items whose current run was armed before the instant.
	RequestedBefore time.Time
}

// VerificationPatch updates the cached verdict of a content item.
type VerificationPatch struct {
	Status VerificationStatus
	Score  *int
	// Run, when non-zero, applies the patch only if the item is still on that run.
	Run int64
}
