package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ContentGate/internal/checks"
	"ContentGate/internal/domain"
	"ContentGate/internal/ports"
)

// VerifierDeps wires the driven adapters used by the orchestrator.
type VerifierDeps struct {
	Content  ports.ContentRepository
	Records  ports.VerificationRepository
	Prober   ports.LinkProber
	Notifier ports.Notifier
	Options  checks.Options
	Logger   *slog.Logger
	Now      func() time.Time
	NewID    func() string
}

// Verifier runs the four checks against a content item, persists a
// verification record and refreshes the item's cached verdict.
type Verifier struct {
	content  ports.ContentRepository
	records  ports.VerificationRepository
	prober   ports.LinkProber
	notifier ports.Notifier
	opts     checks.Options
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

var _ ports.JobHandler = (*Verifier)(nil)

// NewVerifier constructs the orchestrator.
func NewVerifier(deps VerifierDeps) *Verifier {
	v := &Verifier{
		content:  deps.Content,
		records:  deps.Records,
		prober:   deps.Prober,
		notifier: deps.Notifier,
		opts:     deps.Options,
		logger:   deps.Logger,
		now:      deps.Now,
		newID:    deps.NewID,
	}
	if v.logger == nil {
		v.logger = slog.New(slog.DiscardHandler)
	}
	if v.now == nil {
		v.now = time.Now
	}
	if v.newID == nil {
		v.newID = uuid.NewString
	}
	return v
}

// Handle executes a queued job. The item is loaded fresh so the run checks
// the latest copy; jobs for deleted items are dropped.
func (v *Verifier) Handle(ctx context.Context, job domain.VerificationJob) error {
	item, err := v.content.GetContent(ctx, job.ContentID)
	if errors.Is(err, domain.ErrNotFound) {
		v.logger.Info("skip verification of deleted content", "content_id", job.ContentID, "run", job.Run)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load content %s: %w", job.ContentID, err)
	}

	_, err = v.verify(ctx, item, job.Run)
	return err
}

// Verify runs a verification for item outside the queue.
func (v *Verifier) Verify(ctx context.Context, item domain.ContentItem) (domain.VerificationRecord, error) {
	return v.verify(ctx, item, item.VerificationRun)
}

func (v *Verifier) verify(ctx context.Context, item domain.ContentItem, run int64) (domain.VerificationRecord, error) {
	started := v.now()
	results := v.runChecks(ctx, item)

	record := domain.VerificationRecord{
		ID:            v.newID(),
		ContentID:     item.ID,
		AuthorID:      item.CreatedBy,
		Run:           run,
		VerifiedAt:    v.now().UTC(),
		Checks:        results,
		OverallPassed: results.Passed(),
		OverallScore:  results.Score(),
		IssueReasons:  results.IssueReasons(),
	}

	if err := v.records.SaveVerification(ctx, record); err != nil {
		return domain.VerificationRecord{}, fmt.Errorf("persist verification for %s: %w", item.ID, err)
	}

	// Run 0 means the item never entered review; its cached verdict stays empty.
	if run > 0 {
		score := record.OverallScore
		applied, err := v.content.PatchVerification(ctx, item.ID, domain.VerificationPatch{
			Status: record.Status(),
			Score:  &score,
			Run:    run,
		})
		if err != nil {
			return record, fmt.Errorf("update cached verdict for %s: %w", item.ID, err)
		}
		if !applied {
			v.logger.Debug("cached verdict left to a newer run", "content_id", item.ID, "run", run)
		}
	}

	v.logger.Info("verification finished",
		"content_id", item.ID,
		"run", run,
		"passed", record.OverallPassed,
		"score", record.OverallScore,
		"issues", record.IssueReasons,
		"duration", time.Since(started),
	)

	if v.notifier != nil {
		if err := v.notifier.PublishVerdict(ctx, item, record); err != nil {
			v.logger.Warn("publish verdict", "content_id", item.ID, "error", err)
		}
	}
	return record, nil
}

func (v *Verifier) runChecks(ctx context.Context, item domain.ContentItem) domain.CheckResults {
	var results domain.CheckResults

	results.CharacterCount = guard(v.logger, "character count",
		func() domain.CharacterCheck {
			return checks.CharacterCount(item.Body, item.ContentType, v.opts)
		},
		func(warning string) domain.CharacterCheck {
			return domain.CharacterCheck{Count: utf8.RuneCountInString(item.Body), Warnings: []string{warning}}
		})

	results.Links = guard(v.logger, "link health",
		func() domain.LinkCheck {
			return checks.Links(ctx, v.prober, item.Body, v.opts)
		},
		func(warning string) domain.LinkCheck {
			return domain.LinkCheck{URLs: []string{}, Broken: []string{}, Warnings: []string{warning}}
		})

	results.Tone = guard(v.logger, "tone similarity",
		func() domain.ToneCheck {
			baseline, err := v.baseline(ctx, item)
			if err != nil {
				v.logger.Warn("baseline corpus unavailable", "content_id", item.ID, "error", err)
				return domain.ToneCheck{Warnings: []string{fmt.Sprintf("baseline corpus unavailable: %v", err)}}
			}
			return checks.Tone(item.Body, baseline, v.opts)
		},
		func(warning string) domain.ToneCheck {
			return domain.ToneCheck{Warnings: []string{warning}}
		})

	results.Formatting = guard(v.logger, "formatting",
		func() domain.FormattingCheck {
			return checks.Formatting(item.Body, v.opts)
		},
		func(warning string) domain.FormattingCheck {
			return domain.FormattingCheck{Issues: []string{}, Warnings: []string{warning}}
		})

	return results
}

// baseline returns the bodies of the voice reference corpus: the author's
// published items, else every published item. An empty result makes the
// tone check compare the draft with itself.
func (v *Verifier) baseline(ctx context.Context, item domain.ContentItem) ([]string, error) {
	filters := []domain.ContentFilter{
		{Stage: domain.StagePublished, CreatedBy: item.CreatedBy},
		{Stage: domain.StagePublished},
	}
	for _, filter := range filters {
		published, err := v.content.ListContent(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list published content: %w", err)
		}
		bodies := make([]string, 0, len(published))
		for _, p := range published {
			if p.ID == item.ID {
				continue
			}
			bodies = append(bodies, p.Body)
		}
		if len(bodies) > 0 {
			return bodies, nil
		}
	}
	return nil, nil
}

// guard runs one check and turns a panic into a failing result so the other
// checks and the aggregation still complete.
func guard[T any](logger *slog.Logger, name string, run func() T, degraded func(warning string) T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			warning := fmt.Sprintf("%s check crashed: %v", name, r)
			logger.Error("check crashed", "check", name, "panic", r)
			out = degraded(warning)
		}
	}()
	return run()
}
