package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ContentGate/internal/domain"
	"ContentGate/internal/ports"
)

// Reasons attached to scheduled verification jobs.
const (
	ReasonCreated = "created-in-review"
	ReasonMoved   = "moved-to-review"
	ReasonEdited  = "edited-in-review"
	ReasonStale   = "stale-retry"
)

// PipelineDeps wires the driven adapters into the stage machine.
type PipelineDeps struct {
	Content  ports.ContentRepository
	Queue    ports.JobQueue
	Verifier *Verifier
	Logger   *slog.Logger
	Now      func() time.Time
	NewID    func() string
}

// Pipeline owns the content lifecycle and decides when a verification is due.
type Pipeline struct {
	content  ports.ContentRepository
	queue    ports.JobQueue
	verifier *Verifier
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewPipeline constructs the lifecycle use case.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		content:  deps.Content,
		queue:    deps.Queue,
		verifier: deps.Verifier,
		validate: validator.New(),
		logger:   deps.Logger,
		now:      deps.Now,
		newID:    deps.NewID,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

// CreateContentInput is the payload for a new draft.
type CreateContentInput struct {
	Title       string  `json:"title" validate:"required,max=300"`
	Body        string  `json:"body" validate:"max=100000"`
	ContentType string  `json:"contentType" validate:"required"`
	Stage       string  `json:"stage"`
	CreatedBy   string  `json:"createdBy" validate:"max=200"`
	AssignedTo  string  `json:"assignedTo" validate:"max=200"`
	Notes       *string `json:"notes"`
}

// MoveStageInput moves an item to another lifecycle stage.
type MoveStageInput struct {
	ID           string  `json:"id" validate:"required"`
	Stage        string  `json:"stage" validate:"required"`
	Notes        *string `json:"notes"`
	PublishedURL *string `json:"publishedUrl" validate:"omitempty,url"`
}

// EditContentInput updates fields of an item; nil fields are left alone.
type EditContentInput struct {
	ID          string  `json:"id" validate:"required"`
	Title       *string `json:"title" validate:"omitempty,min=1,max=300"`
	Body        *string `json:"body" validate:"omitempty,max=100000"`
	Notes       *string `json:"notes"`
	ContentType *string `json:"contentType"`
}

// CreateContent stores a new item. Items created directly in review are
// armed and scheduled for verification.
func (p *Pipeline) CreateContent(ctx context.Context, in CreateContentInput) (domain.ContentItem, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := p.check(in); err != nil {
		return domain.ContentItem{}, err
	}

	contentType, err := domain.ParseContentType(in.ContentType)
	if err != nil {
		return domain.ContentItem{}, err
	}
	stage := domain.StageIdea
	if in.Stage != "" {
		if stage, err = domain.ParseStage(in.Stage); err != nil {
			return domain.ContentItem{}, err
		}
	}

	now := p.now().UTC()
	item := domain.ContentItem{
		ID:          p.newID(),
		Title:       in.Title,
		Body:        in.Body,
		ContentType: contentType,
		Stage:       stage,
		CreatedBy:   in.CreatedBy,
		AssignedTo:  in.AssignedTo,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if stage == domain.StageReview {
		item.ArmVerification(now)
	}

	if err := p.content.CreateContent(ctx, item); err != nil {
		return domain.ContentItem{}, fmt.Errorf("create content: %w", err)
	}
	p.logger.Info("content created", "content_id", item.ID, "stage", item.Stage, "type", item.ContentType)

	if stage == domain.StageReview {
		p.schedule(item, ReasonCreated)
	}
	return item, nil
}

// MoveStage changes an item's stage. Entering review from any other stage
// starts a fresh verification run.
func (p *Pipeline) MoveStage(ctx context.Context, in MoveStageInput) (domain.ContentItem, error) {
	if err := p.check(in); err != nil {
		return domain.ContentItem{}, err
	}
	target, err := domain.ParseStage(in.Stage)
	if err != nil {
		return domain.ContentItem{}, err
	}

	item, err := p.content.GetContent(ctx, in.ID)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("load content %s: %w", in.ID, err)
	}

	previous := item.Stage
	now := p.now().UTC()
	item.Stage = target
	item.UpdatedAt = now
	if in.Notes != nil {
		notes := *in.Notes
		item.Notes = &notes
	}
	if target == domain.StagePublished && in.PublishedURL != nil {
		published := *in.PublishedURL
		item.PublishedURL = &published
	}

	if err := p.content.UpdateContent(ctx, item); err != nil {
		return domain.ContentItem{}, fmt.Errorf("update content %s: %w", item.ID, err)
	}
	p.logger.Info("content moved", "content_id", item.ID, "from", previous, "to", target)

	if target == domain.StageReview && previous != domain.StageReview {
		if err := p.arm(ctx, &item, ReasonMoved); err != nil {
			return domain.ContentItem{}, err
		}
	}
	return item, nil
}

// EditContent applies field updates. A change to title, body or type of an
// item in review invalidates its verdict and schedules a new run.
func (p *Pipeline) EditContent(ctx context.Context, in EditContentInput) (domain.ContentItem, error) {
	if err := p.check(in); err != nil {
		return domain.ContentItem{}, err
	}

	edit := domain.ContentEdit{Title: in.Title, Body: in.Body, Notes: in.Notes}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return domain.ContentItem{}, fmt.Errorf("%w: title must not be blank", domain.ErrValidation)
		}
		edit.Title = &title
	}
	if in.ContentType != nil {
		contentType, err := domain.ParseContentType(*in.ContentType)
		if err != nil {
			return domain.ContentItem{}, err
		}
		edit.ContentType = &contentType
	}

	item, err := p.content.GetContent(ctx, in.ID)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("load content %s: %w", in.ID, err)
	}

	meaningful := edit.Apply(&item)
	item.UpdatedAt = p.now().UTC()
	if err := p.content.UpdateContent(ctx, item); err != nil {
		return domain.ContentItem{}, fmt.Errorf("update content %s: %w", item.ID, err)
	}

	if meaningful && item.Stage == domain.StageReview {
		if err := p.arm(ctx, &item, ReasonEdited); err != nil {
			return domain.ContentItem{}, err
		}
	}
	return item, nil
}

// DeleteContent removes an item. Verification history is kept.
func (p *Pipeline) DeleteContent(ctx context.Context, id string) error {
	if err := p.content.DeleteContent(ctx, id); err != nil {
		return fmt.Errorf("delete content %s: %w", id, err)
	}
	p.logger.Info("content deleted", "content_id", id)
	return nil
}

// GetContent returns a single item.
func (p *Pipeline) GetContent(ctx context.Context, id string) (domain.ContentItem, error) {
	item, err := p.content.GetContent(ctx, id)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("load content %s: %w", id, err)
	}
	return item, nil
}

// ListContent lists items, optionally narrowed by stage and author.
func (p *Pipeline) ListContent(ctx context.Context, stage, author string) ([]domain.ContentItem, error) {
	filter := domain.ContentFilter{CreatedBy: author}
	if stage != "" {
		parsed, err := domain.ParseStage(stage)
		if err != nil {
			return nil, err
		}
		filter.Stage = parsed
	}
	items, err := p.content.ListContent(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// RequeueStale re-arms items in review whose verification has been pending
// for longer than olderThan, covering jobs lost to a full queue or a restart.
func (p *Pipeline) RequeueStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := p.now().UTC().Add(-olderThan)
	items, err := p.content.ListContent(ctx, domain.ContentFilter{
		Stage:           domain.StageReview,
		Status:          domain.VerificationPending,
		RequestedBefore: cutoff,
	})
	if err != nil {
		return 0, fmt.Errorf("list stale content: %w", err)
	}

	requeued := 0
	for i := range items {
		if err := p.arm(ctx, &items[i], ReasonStale); err != nil {
			p.logger.Warn("requeue stale verification", "content_id", items[i].ID, "error", err)
			continue
		}
		requeued++
	}
	return requeued, nil
}

// VerifyNow runs a verification synchronously, bypassing the queue.
func (p *Pipeline) VerifyNow(ctx context.Context, id string) (domain.VerificationRecord, error) {
	if p.verifier == nil {
		return domain.VerificationRecord{}, fmt.Errorf("no verifier configured")
	}
	item, err := p.content.GetContent(ctx, id)
	if err != nil {
		return domain.VerificationRecord{}, fmt.Errorf("load content %s: %w", id, err)
	}
	return p.verifier.Verify(ctx, item)
}

func (p *Pipeline) arm(ctx context.Context, item *domain.ContentItem, reason string) error {
	now := p.now().UTC()
	run, err := p.content.ArmVerification(ctx, item.ID, now)
	if err != nil {
		return fmt.Errorf("arm verification for %s: %w", item.ID, err)
	}
	item.ArmVerification(now)
	item.VerificationRun = run
	p.schedule(*item, reason)
	return nil
}

// schedule hands the job to the queue. Failures are logged only: the item
// stays pending and the stale sweep picks it up later.
func (p *Pipeline) schedule(item domain.ContentItem, reason string) {
	job := domain.VerificationJob{
		ContentID:  item.ID,
		Run:        item.VerificationRun,
		Reason:     reason,
		EnqueuedAt: p.now().UTC(),
	}
	if p.queue == nil {
		p.logger.Warn("verification not scheduled: no queue", "content_id", item.ID, "run", job.Run)
		return
	}
	if err := p.queue.Enqueue(job); err != nil {
		p.logger.Warn("verification not scheduled", "content_id", item.ID, "run", job.Run, "reason", reason, "error", err)
		return
	}
	p.logger.Debug("verification scheduled", "content_id", item.ID, "run", job.Run, "reason", reason)
}

func (p *Pipeline) check(in any) error {
	if err := p.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
