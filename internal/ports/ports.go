package ports

import (
	"context"
	"time"

	"ContentGate/internal/domain"
)

// ContentRepository stores content items and their cached verdicts.
type ContentRepository interface {
	CreateContent(ctx context.Context, item domain.ContentItem) error
	GetContent(ctx context.Context, id string) (domain.ContentItem, error)
	// UpdateContent writes the editable fields; cached verdict fields are
	// left alone so a concurrent run's result is not clobbered.
	UpdateContent(ctx context.Context, item domain.ContentItem) error
	// ArmVerification resets the cached verdict to pending, bumps the run
	// counter and returns the new run.
	ArmVerification(ctx context.Context, id string, at time.Time) (int64, error)
	DeleteContent(ctx context.Context, id string) error
	ListContent(ctx context.Context, filter domain.ContentFilter) ([]domain.ContentItem, error)
	// PatchVerification updates only the cached verdict fields. It reports
	// false when the item is gone or no longer on patch.Run.
	PatchVerification(ctx context.Context, id string, patch domain.VerificationPatch) (bool, error)
}

// VerificationRepository is the append-only history of verification runs.
type VerificationRepository interface {
	SaveVerification(ctx context.Context, record domain.VerificationRecord) error
	LatestVerification(ctx context.Context, contentID string) (domain.VerificationRecord, error)
	// ListVerifications returns records newest first.
	ListVerifications(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationRecord, error)
	MarkOverridden(ctx context.Context, recordID, overriddenBy string, at time.Time) error
}

// JobQueue accepts verification jobs for asynchronous execution.
// Enqueue must not block on the job itself.
type JobQueue interface {
	Enqueue(job domain.VerificationJob) error
}

// JobHandler executes one verification job.
type JobHandler interface {
	Handle(ctx context.Context, job domain.VerificationJob) error
}

// LinkProber checks whether a URL is reachable and reports its final status.
type LinkProber interface {
	Probe(ctx context.Context, rawURL string) (status int, err error)
}

// Notifier tells reviewers about verdicts worth their attention.
type Notifier interface {
	PublishVerdict(ctx context.Context, item domain.ContentItem, record domain.VerificationRecord) error
}

// Scheduler controls periodic maintenance jobs.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
