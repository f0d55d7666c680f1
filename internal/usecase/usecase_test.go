package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"ContentGate/internal/domain"
	"ContentGate/internal/infrastructure/storage"
	"ContentGate/internal/signals"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []domain.VerificationJob
	err  error
}

func (q *recordingQueue) Enqueue(job domain.VerificationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Jobs() []domain.VerificationJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.VerificationJob(nil), q.jobs...)
}

type statusProber map[string]int

func (p statusProber) Probe(_ context.Context, rawURL string) (int, error) {
	if status, ok := p[rawURL]; ok {
		return status, nil
	}
	return 200, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	verdicts []domain.VerificationRecord
}

func (n *recordingNotifier) PublishVerdict(_ context.Context, _ domain.ContentItem, record domain.VerificationRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verdicts = append(n.verdicts, record)
	return nil
}

type harness struct {
	repo     *storage.MemoryRepository
	queue    *recordingQueue
	clock    *fakeClock
	notifier *recordingNotifier
	verifier *Verifier
	pipeline *Pipeline
	reviews  *Reviews
}

func newHarness(t *testing.T, prober statusProber) *harness {
	t.Helper()

	h := &harness{
		repo:     storage.NewMemoryRepository(),
		queue:    &recordingQueue{},
		clock:    &fakeClock{now: time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)},
		notifier: &recordingNotifier{},
	}
	ids := 0
	newID := func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}

	h.verifier = NewVerifier(VerifierDeps{
		Content:  h.repo,
		Records:  h.repo,
		Prober:   prober,
		Notifier: h.notifier,
		Now:      h.clock.Now,
		NewID:    newID,
	})
	h.pipeline = NewPipeline(PipelineDeps{
		Content:  h.repo,
		Queue:    h.queue,
		Verifier: h.verifier,
		Now:      h.clock.Now,
		NewID:    newID,
	})
	h.reviews = NewReviews(ReviewsDeps{
		Content: h.repo,
		Records: h.repo,
		Now:     h.clock.Now,
	})
	return h
}

// runJobs drains the recorded jobs through the verifier in enqueue order.
func (h *harness) runJobs(t *testing.T) {
	t.Helper()
	jobs := h.queue.Jobs()
	h.queue.mu.Lock()
	h.queue.jobs = nil
	h.queue.mu.Unlock()
	for _, job := range jobs {
		if err := h.verifier.Handle(context.Background(), job); err != nil {
			t.Fatalf("handle job %+v: %v", job, err)
		}
	}
}

func bodyOfLength(t *testing.T, n int, paragraphs ...string) string {
	t.Helper()
	body := strings.Join(paragraphs, "\n\n")
	pad := n - utf8.RuneCountInString(body)
	if pad < 0 {
		t.Fatalf("paragraphs already longer than %d runes", n)
	}
	return body + strings.Repeat(" ok", pad/3) + strings.Repeat(".", pad%3)
}

func TestCharacterLimitOnlyFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	body := bodyOfLength(t, 320,
		"We rebuilt the planning board so every campaign sits on one calm screen.",
		"Try it this week and tell us what still slows you down.",
	)

	item, err := h.pipeline.CreateContent(context.Background(), CreateContentInput{
		Title:       "Planning board",
		Body:        body,
		ContentType: string(domain.ContentShortPost),
		Stage:       string(domain.StageReview),
		CreatedBy:   "ana",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.VerificationStatus == nil || *item.VerificationStatus != domain.VerificationPending {
		t.Fatalf("item created in review should be pending, got %v", item.VerificationStatus)
	}
	h.runJobs(t)

	record, err := h.reviews.LatestVerification(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	chars := record.Checks.CharacterCount
	if chars.Passed || chars.Count != 320 || chars.Limit != 280 {
		t.Fatalf("unexpected character check %+v", chars)
	}
	if !record.Checks.Links.Passed || !record.Checks.Tone.Passed || !record.Checks.Formatting.Passed {
		t.Fatalf("other checks should pass: %+v", record.Checks)
	}
	if record.OverallScore != 75 || record.OverallPassed {
		t.Fatalf("expected 75/failed, got %d/%v", record.OverallScore, record.OverallPassed)
	}
	if !reflect.DeepEqual(record.IssueReasons, []domain.IssueReason{domain.IssueCharacterLimit}) {
		t.Fatalf("unexpected reasons %v", record.IssueReasons)
	}

	stored, _ := h.repo.GetContent(context.Background(), item.ID)
	if *stored.VerificationStatus != domain.VerificationFailed || *stored.VerificationScore != 75 {
		t.Fatalf("cached verdict not updated: %v %v", *stored.VerificationStatus, *stored.VerificationScore)
	}
	if len(h.notifier.verdicts) != 1 {
		t.Fatalf("expected notifier to see the verdict")
	}
}

func TestEmojiAndBrokenLinkFailure(t *testing.T) {
	t.Parallel()

	broken := "https://example.com/gone"
	h := newHarness(t, statusProber{broken: 404})
	body := bodyOfLength(t, 500,
		"Hi team 🚀🎉 our spring launch is live and we would love your feedback.",
		"Read the notes at "+broken+" and tell us what you think 🌟🔥💡 thanks.",
	)

	item, err := h.pipeline.CreateContent(context.Background(), CreateContentInput{
		Title:       "Spring launch",
		Body:        body,
		ContentType: string(domain.ContentEmail),
		CreatedBy:   "ben",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(h.queue.Jobs()) != 0 {
		t.Fatalf("idea-stage item must not be scheduled")
	}
	if _, err := h.pipeline.MoveStage(context.Background(), MoveStageInput{ID: item.ID, Stage: string(domain.StageReview)}); err != nil {
		t.Fatalf("move: %v", err)
	}
	h.runJobs(t)

	record, err := h.reviews.LatestVerification(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !record.Checks.CharacterCount.Passed || record.Checks.CharacterCount.Count != 500 {
		t.Fatalf("character check should pass at 500: %+v", record.Checks.CharacterCount)
	}
	if record.Checks.Links.Passed || !reflect.DeepEqual(record.Checks.Links.Broken, []string{broken}) {
		t.Fatalf("unexpected link check %+v", record.Checks.Links)
	}
	if !record.Checks.Tone.Passed || record.Checks.Tone.Score != 100 {
		t.Fatalf("tone should pass at 100: %+v", record.Checks.Tone)
	}
	if record.Checks.Formatting.Passed {
		t.Fatalf("formatting should fail: %+v", record.Checks.Formatting)
	}
	if record.OverallScore != 50 {
		t.Fatalf("expected 50, got %d", record.OverallScore)
	}
}

func TestEditInReviewRearmsBeforePreviousRunFinishes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	item, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Launch",
		Body:        "We launched a new thing today.",
		ContentType: string(domain.ContentShortPost),
		Stage:       string(domain.StageReview),
		CreatedBy:   "ana",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	body := "We launched a better thing today."
	edited, err := h.pipeline.EditContent(ctx, EditContentInput{ID: item.ID, Body: &body})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if *edited.VerificationStatus != domain.VerificationPending || edited.VerificationRun != 2 {
		t.Fatalf("edit should re-arm: status=%v run=%d", *edited.VerificationStatus, edited.VerificationRun)
	}

	jobs := h.queue.Jobs()
	if len(jobs) != 2 || jobs[0].Run != 1 || jobs[1].Run != 2 || jobs[1].Reason != ReasonEdited {
		t.Fatalf("unexpected jobs %+v", jobs)
	}

	// The first run completes late; its record is kept but the cache stays pending.
	if err := h.verifier.Handle(ctx, jobs[0]); err != nil {
		t.Fatalf("handle stale run: %v", err)
	}
	stored, _ := h.repo.GetContent(ctx, item.ID)
	if *stored.VerificationStatus != domain.VerificationPending {
		t.Fatalf("stale run overwrote the cache: %v", *stored.VerificationStatus)
	}

	if err := h.verifier.Handle(ctx, jobs[1]); err != nil {
		t.Fatalf("handle current run: %v", err)
	}
	stored, _ = h.repo.GetContent(ctx, item.ID)
	if *stored.VerificationStatus != domain.VerificationPassed {
		t.Fatalf("current run should set the verdict, got %v", *stored.VerificationStatus)
	}

	history, _ := h.reviews.VerificationHistory(ctx, "ana")
	if len(history) != 2 {
		t.Fatalf("both runs should be recorded, got %d", len(history))
	}
}

func TestLeavingReviewStopsScheduling(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	item, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Approved piece",
		Body:        "Already signed off.",
		ContentType: string(domain.ContentBlogPost),
		Stage:       string(domain.StageApproved),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.pipeline.MoveStage(ctx, MoveStageInput{ID: item.ID, Stage: string(domain.StageIdea)}); err != nil {
		t.Fatalf("move: %v", err)
	}
	body := "Rewritten from scratch."
	edited, err := h.pipeline.EditContent(ctx, EditContentInput{ID: item.ID, Body: &body})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	if jobs := h.queue.Jobs(); len(jobs) != 0 {
		t.Fatalf("no verification expected, got %+v", jobs)
	}
	if edited.VerificationStatus != nil || edited.Body != body {
		t.Fatalf("unexpected item %+v", edited)
	}
}

func TestRepeatedMoveAndNoopEditsDoNotSchedule(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	item, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Steady",
		Body:        "Nothing changes here.",
		ContentType: string(domain.ContentOther),
		Stage:       string(domain.StageReview),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := h.pipeline.MoveStage(ctx, MoveStageInput{ID: item.ID, Stage: string(domain.StageReview)}); err != nil {
		t.Fatalf("move: %v", err)
	}
	same := item.Body
	notes := "looks fine"
	if _, err := h.pipeline.EditContent(ctx, EditContentInput{ID: item.ID, Body: &same, Notes: &notes}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	if jobs := h.queue.Jobs(); len(jobs) != 1 {
		t.Fatalf("only the creation run should be scheduled, got %d", len(jobs))
	}
	stored, _ := h.repo.GetContent(ctx, item.ID)
	if stored.Notes == nil || *stored.Notes != notes {
		t.Fatalf("notes not saved")
	}
}

func TestEnqueueFailureKeepsMutationAndSweepRetries(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	h.queue.err = errors.New("queue full")

	item, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Lost job",
		Body:        "Short and sweet.",
		ContentType: string(domain.ContentShortPost),
		Stage:       string(domain.StageReview),
	})
	if err != nil {
		t.Fatalf("enqueue failure must not fail the mutation: %v", err)
	}

	n, err := h.pipeline.RequeueStale(ctx, 5*time.Minute)
	if err != nil || n != 0 {
		t.Fatalf("fresh item is not stale yet: n=%d err=%v", n, err)
	}

	h.queue.err = nil
	h.clock.Advance(10 * time.Minute)
	n, err = h.pipeline.RequeueStale(ctx, 5*time.Minute)
	if err != nil || n != 1 {
		t.Fatalf("expected one requeue, got n=%d err=%v", n, err)
	}
	jobs := h.queue.Jobs()
	if len(jobs) != 1 || jobs[0].ContentID != item.ID || jobs[0].Run != 2 || jobs[0].Reason != ReasonStale {
		t.Fatalf("unexpected jobs %+v", jobs)
	}
}

func TestHandleSkipsDeletedContent(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	item, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Gone",
		Body:        "Soon deleted.",
		ContentType: string(domain.ContentEmail),
		Stage:       string(domain.StageReview),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := h.pipeline.DeleteContent(ctx, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	h.runJobs(t)

	if _, err := h.reviews.LatestVerification(ctx, item.ID); !errors.Is(err, domain.ErrNoVerification) {
		t.Fatalf("expected no record, got %v", err)
	}
	if _, err := h.pipeline.GetContent(ctx, item.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBaselineFallsBackToAllPublished(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	published := "Is this the right call? We think so! Come see!"
	if _, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Other voice",
		Body:        published,
		ContentType: string(domain.ContentShortPost),
		Stage:       string(domain.StagePublished),
		CreatedBy:   "ben",
	}); err != nil {
		t.Fatalf("create published: %v", err)
	}

	draft, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Draft",
		Body:        "The quarterly report is attached for review.",
		ContentType: string(domain.ContentShortPost),
		CreatedBy:   "ana",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	record, err := h.pipeline.VerifyNow(ctx, draft.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if record.Checks.Tone.Baseline != signals.Extract(published) {
		t.Fatalf("baseline should come from ben's published item: %+v", record.Checks.Tone.Baseline)
	}
	if record.Checks.Tone.Score >= 100 {
		t.Fatalf("different voices should not score 100")
	}
}

func TestVerifyNowKeepsCacheEmptyOutsideReview(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	item, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Idea",
		Body:        "A quiet note for later.",
		ContentType: string(domain.ContentShortPost),
		CreatedBy:   "ana",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	record, err := h.pipeline.VerifyNow(ctx, item.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if record.Run != 0 || !record.OverallPassed {
		t.Fatalf("unexpected record %+v", record)
	}
	if latest, err := h.reviews.LatestVerification(ctx, item.ID); err != nil || latest.ID != record.ID {
		t.Fatalf("record should be stored: %+v %v", latest, err)
	}

	stored, err := h.repo.GetContent(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Stage != domain.StageIdea || stored.VerificationStatus != nil || stored.VerificationScore != nil {
		t.Fatalf("idea item must keep an empty cached verdict: %+v", stored)
	}
}

func TestVerificationIsRepeatable(t *testing.T) {
	t.Parallel()

	const broken = "https://example.com/gone"
	h := newHarness(t, statusProber{broken: 404})
	ctx := context.Background()
	if _, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Earlier post",
		Body:        "We shipped it! Do you like it? Tell us.",
		ContentType: string(domain.ContentShortPost),
		Stage:       string(domain.StagePublished),
		CreatedBy:   "ana",
	}); err != nil {
		t.Fatalf("create published: %v", err)
	}
	item, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Follow up",
		Body:        "Our notes live at https://example.com/notes and " + broken + " for now.",
		ContentType: string(domain.ContentShortPost),
		Stage:       string(domain.StageReview),
		CreatedBy:   "ana",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := h.pipeline.VerifyNow(ctx, item.ID)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	second, err := h.pipeline.VerifyNow(ctx, item.ID)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}

	if !reflect.DeepEqual(first.Checks, second.Checks) {
		t.Fatalf("checks differ between runs:\n%+v\n%+v", first.Checks, second.Checks)
	}
	if first.OverallScore != second.OverallScore || first.OverallPassed != second.OverallPassed {
		t.Fatalf("verdict differs: %d/%v vs %d/%v", first.OverallScore, first.OverallPassed, second.OverallScore, second.OverallPassed)
	}
	if !reflect.DeepEqual(first.Checks.Links.Broken, []string{broken}) {
		t.Fatalf("unexpected broken links %v", first.Checks.Links.Broken)
	}
	if first.ID == second.ID {
		t.Fatalf("each run should store its own record")
	}
}

type failingList struct {
	*storage.MemoryRepository
}

func (failingList) ListContent(context.Context, domain.ContentFilter) ([]domain.ContentItem, error) {
	return nil, errors.New("db down")
}

func TestBaselineFailureDegradesToneOnly(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	v := NewVerifier(VerifierDeps{Content: failingList{repo}, Records: repo})
	item := domain.ContentItem{ID: "c1", Body: "Plain words here.", ContentType: domain.ContentShortPost}

	record, err := v.Verify(context.Background(), item)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	tone := record.Checks.Tone
	if tone.Passed || len(tone.Warnings) != 1 || !strings.HasPrefix(tone.Warnings[0], "baseline corpus unavailable: ") {
		t.Fatalf("tone should fail with a baseline warning: %+v", tone)
	}
	if strings.Contains(tone.Warnings[0], "crashed") {
		t.Fatalf("a store error is not a crash: %q", tone.Warnings[0])
	}
	if !record.Checks.CharacterCount.Passed || !record.Checks.Formatting.Passed || !record.Checks.Links.Passed {
		t.Fatalf("other checks should still run: %+v", record.Checks)
	}
	if record.OverallScore != 75 {
		t.Fatalf("expected 75, got %d", record.OverallScore)
	}
}

func TestOverrideKeepsFindingsAndFirstReviewer(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	item, err := h.pipeline.CreateContent(ctx, CreateContentInput{
		Title:       "Too long",
		Body:        strings.Repeat("word ", 100),
		ContentType: string(domain.ContentShortPost),
		Stage:       string(domain.StageReview),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := h.reviews.Override(ctx, item.ID, "lead"); !errors.Is(err, domain.ErrNoVerification) {
		t.Fatalf("override before any run should fail, got %v", err)
	}
	h.runJobs(t)

	if _, err := h.reviews.Override(ctx, item.ID, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank reviewer should fail validation, got %v", err)
	}

	record, err := h.reviews.Override(ctx, item.ID, "lead")
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if !record.Overridden || *record.OverriddenBy != "lead" || record.OverallPassed {
		t.Fatalf("override should keep findings: %+v", record)
	}

	h.clock.Advance(time.Minute)
	again, err := h.reviews.Override(ctx, item.ID, "someone-else")
	if err != nil {
		t.Fatalf("second override: %v", err)
	}
	if *again.OverriddenBy != "lead" || !again.OverriddenAt.Equal(*record.OverriddenAt) {
		t.Fatalf("second override must not replace the first: %+v", again)
	}

	stored, _ := h.repo.GetContent(ctx, item.ID)
	if *stored.VerificationStatus != domain.VerificationOverridden {
		t.Fatalf("cached status should be overridden, got %v", *stored.VerificationStatus)
	}
	if len(record.IssueReasons) == 0 || record.IssueReasons[0] != domain.IssueCharacterLimit {
		t.Fatalf("issue reasons lost: %v", record.IssueReasons)
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateContentInput
		want error
	}{
		{"blank title", CreateContentInput{Title: " ", ContentType: "email"}, domain.ErrValidation},
		{"bad type", CreateContentInput{Title: "x", ContentType: "tweet"}, domain.ErrInvalidContentType},
		{"bad stage", CreateContentInput{Title: "x", ContentType: "email", Stage: "draft"}, domain.ErrInvalidStage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.pipeline.CreateContent(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := h.pipeline.MoveStage(ctx, MoveStageInput{ID: "missing", Stage: "review"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC) // Thursday
	rec := func(at time.Time, passed bool, tone int, reasons ...domain.IssueReason) domain.VerificationRecord {
		r := domain.VerificationRecord{VerifiedAt: at, OverallPassed: passed, IssueReasons: reasons}
		r.Checks.Tone.Score = tone
		return r
	}
	records := []domain.VerificationRecord{
		rec(now, true, 100),
		rec(now.Add(-24*time.Hour), false, 80, domain.IssueBrokenLinks, domain.IssueFormatting),
		rec(now.AddDate(0, 0, -7), false, 90, domain.IssueBrokenLinks),
		rec(now.AddDate(0, 0, -100), true, 100),
	}

	stats := ComputeStats(records, now, 4)
	if stats.Total != 4 || stats.PassRate != 50 {
		t.Fatalf("unexpected totals %+v", stats)
	}
	if stats.ToneDrift != 7.5 {
		t.Fatalf("expected drift 7.5, got %v", stats.ToneDrift)
	}
	wantIssues := []domain.IssueCount{
		{Reason: domain.IssueBrokenLinks, Count: 2},
		{Reason: domain.IssueFormatting, Count: 1},
	}
	if !reflect.DeepEqual(stats.CommonIssues, wantIssues) {
		t.Fatalf("unexpected issues %+v", stats.CommonIssues)
	}

	if len(stats.WeeklyTrend) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(stats.WeeklyTrend))
	}
	last := stats.WeeklyTrend[3]
	if !last.WeekStart.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) || last.Total != 2 || last.PassRate != 50 {
		t.Fatalf("unexpected current week %+v", last)
	}
	prev := stats.WeeklyTrend[2]
	if prev.Total != 1 || prev.Passed != 0 {
		t.Fatalf("unexpected previous week %+v", prev)
	}
	if stats.WeeklyTrend[0].Total != 0 {
		t.Fatalf("old record leaked into the trend")
	}

	empty := ComputeStats(nil, now, 0)
	if empty.Total != 0 || empty.PassRate != 0 || len(empty.WeeklyTrend) != defaultTrendWeeks || empty.CommonIssues == nil {
		t.Fatalf("unexpected empty stats %+v", empty)
	}
}

func TestWeekStart(t *testing.T) {
	t.Parallel()

	sunday := time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC)
	if got := weekStart(sunday); !got.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("sunday belongs to the week starting monday 11th, got %v", got)
	}
	monday := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	if got := weekStart(monday); !got.Equal(monday) {
		t.Fatalf("monday starts its own week, got %v", got)
	}
}
