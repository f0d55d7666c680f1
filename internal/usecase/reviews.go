package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"ContentGate/internal/domain"
	"ContentGate/internal/ports"
)

const defaultTrendWeeks = 8

// ReviewsDeps wires the repositories used by the read side and overrides.
type ReviewsDeps struct {
	Content ports.ContentRepository
	Records ports.VerificationRepository
	Logger  *slog.Logger
	Now     func() time.Time
	// Weeks is the length of the weekly trend in stats.
	Weeks int
}

// Reviews serves verification history, stats and human overrides.
type Reviews struct {
	content ports.ContentRepository
	records ports.VerificationRepository
	logger  *slog.Logger
	now     func() time.Time
	weeks   int
}

// NewReviews constructs the review use case.
func NewReviews(deps ReviewsDeps) *Reviews {
	r := &Reviews{
		content: deps.Content,
		records: deps.Records,
		logger:  deps.Logger,
		now:     deps.Now,
		weeks:   deps.Weeks,
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.weeks <= 0 {
		r.weeks = defaultTrendWeeks
	}
	return r
}

// LatestVerification returns the newest record for a content item.
func (r *Reviews) LatestVerification(ctx context.Context, contentID string) (domain.VerificationRecord, error) {
	record, err := r.records.LatestVerification(ctx, contentID)
	if err != nil {
		return domain.VerificationRecord{}, fmt.Errorf("latest verification: %w", err)
	}
	return record, nil
}

// VerificationHistory lists records newest first, optionally for one author.
func (r *Reviews) VerificationHistory(ctx context.Context, authorID string) ([]domain.VerificationRecord, error) {
	records, err := r.records.ListVerifications(ctx, domain.VerificationFilter{AuthorID: authorID})
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return records, nil
}

// VerificationStats summarises the history of one author, or everyone.
func (r *Reviews) VerificationStats(ctx context.Context, authorID string) (domain.VerificationStats, error) {
	records, err := r.VerificationHistory(ctx, authorID)
	if err != nil {
		return domain.VerificationStats{}, err
	}
	return ComputeStats(records, r.now(), r.weeks), nil
}

// Override marks the latest record of an item as accepted by a human. The
// first override wins; repeating it changes nothing.
func (r *Reviews) Override(ctx context.Context, contentID, overriddenBy string) (domain.VerificationRecord, error) {
	overriddenBy = strings.TrimSpace(overriddenBy)
	if overriddenBy == "" {
		return domain.VerificationRecord{}, fmt.Errorf("%w: overriddenBy is required", domain.ErrValidation)
	}

	record, err := r.records.LatestVerification(ctx, contentID)
	if err != nil {
		return domain.VerificationRecord{}, fmt.Errorf("override %s: %w", contentID, err)
	}

	if !record.Overridden {
		at := r.now().UTC()
		if err := r.records.MarkOverridden(ctx, record.ID, overriddenBy, at); err != nil {
			return domain.VerificationRecord{}, fmt.Errorf("mark override on %s: %w", record.ID, err)
		}
		record.Overridden = true
		record.OverriddenBy = &overriddenBy
		record.OverriddenAt = &at
		r.logger.Info("verification overridden", "content_id", contentID, "record_id", record.ID, "by", overriddenBy)
	}

	applied, err := r.content.PatchVerification(ctx, contentID, domain.VerificationPatch{Status: domain.VerificationOverridden})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.VerificationRecord{}, fmt.Errorf("update cached verdict for %s: %w", contentID, err)
	}
	if !applied {
		r.logger.Debug("override recorded for deleted content", "content_id", contentID)
	}
	return record, nil
}

// ComputeStats derives aggregate numbers from records. The weekly trend has
// exactly weeks buckets ending with the ISO week containing now, oldest first.
func ComputeStats(records []domain.VerificationRecord, now time.Time, weeks int) domain.VerificationStats {
	if weeks <= 0 {
		weeks = defaultTrendWeeks
	}

	stats := domain.VerificationStats{
		Total:        len(records),
		CommonIssues: []domain.IssueCount{},
		WeeklyTrend:  make([]domain.WeeklyBucket, weeks),
	}

	current := weekStart(now)
	first := current.AddDate(0, 0, -7*(weeks-1))
	for i := range stats.WeeklyTrend {
		stats.WeeklyTrend[i].WeekStart = first.AddDate(0, 0, 7*i)
	}

	passed := 0
	drift := 0.0
	issues := map[domain.IssueReason]int{}
	for _, rec := range records {
		if rec.OverallPassed {
			passed++
		}
		drift += float64(100 - rec.Checks.Tone.Score)
		for _, reason := range rec.IssueReasons {
			issues[reason]++
		}

		start := weekStart(rec.VerifiedAt)
		if start.Before(first) || start.After(current) {
			continue
		}
		idx := int(start.Sub(first).Hours() / (24 * 7))
		bucket := &stats.WeeklyTrend[idx]
		bucket.Total++
		if rec.OverallPassed {
			bucket.Passed++
		}
	}

	for i := range stats.WeeklyTrend {
		bucket := &stats.WeeklyTrend[i]
		bucket.PassRate = percent(bucket.Passed, bucket.Total)
	}

	if stats.Total > 0 {
		stats.PassRate = percent(passed, stats.Total)
		stats.ToneDrift = math.Round(drift/float64(stats.Total)*10) / 10
	}

	for reason, count := range issues {
		stats.CommonIssues = append(stats.CommonIssues, domain.IssueCount{Reason: reason, Count: count})
	}
	sort.Slice(stats.CommonIssues, func(i, j int) bool {
		a, b := stats.CommonIssues[i], stats.CommonIssues[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Reason < b.Reason
	})

	return stats
}

// weekStart returns midnight UTC of the Monday starting t's ISO week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
