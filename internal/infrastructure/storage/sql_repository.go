package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ContentGate/internal/domain"
	"ContentGate/internal/ports"
)

var contentColumns = []string{
	"id", "title", "body", "content_type", "stage", "created_by", "assigned_to",
	"notes", "published_url", "verification_status", "verification_score",
	"verification_run", "verification_requested_at", "created_at", "updated_at",
}

var recordColumns = []string{
	"id", "content_id", "author_id", "run", "verified_at", "checks",
	"overall_passed", "overall_score", "issue_reasons",
	"overridden", "overridden_by", "overridden_at",
}

// SQLRepository persists content items and verification records in sqlite or
// postgres through database/sql.
type SQLRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.ContentRepository = (*SQLRepository)(nil)
var _ ports.VerificationRepository = (*SQLRepository)(nil)

// NewSQLRepository wires a sql.DB opened with the given driver name.
func NewSQLRepository(db *sql.DB, driver string) *SQLRepository {
	return &SQLRepository{db: db, sb: placeholders(driver)}
}

// CreateContent inserts a new content item.
func (r *SQLRepository) CreateContent(ctx context.Context, item domain.ContentItem) error {
	query, args, err := r.sb.Insert("content_items").
		Columns(contentColumns...).
		Values(
			item.ID, item.Title, item.Body, string(item.ContentType), string(item.Stage),
			item.CreatedBy, item.AssignedTo, nullString(item.Notes), nullString(item.PublishedURL),
			nullStatus(item.VerificationStatus), nullInt(item.VerificationScore),
			item.VerificationRun, nullTime(item.VerificationRequestedAt),
			item.CreatedAt.UnixNano(), item.UpdatedAt.UnixNano(),
		).ToSql()
	if err != nil {
		return fmt.Errorf("build insert content: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert content %s: %w", item.ID, err)
	}
	return nil
}

// GetContent loads one content item or returns domain.ErrNotFound.
func (r *SQLRepository) GetContent(ctx context.Context, id string) (domain.ContentItem, error) {
	query, args, err := r.sb.Select(contentColumns...).From("content_items").
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("build select content: %w", err)
	}

	item, err := scanContent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContentItem{}, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("select content %s: %w", id, err)
	}
	return item, nil
}

// UpdateContent rewrites the editable columns of an item.
func (r *SQLRepository) UpdateContent(ctx context.Context, item domain.ContentItem) error {
	query, args, err := r.sb.Update("content_items").
		Set("title", item.Title).
		Set("body", item.Body).
		Set("content_type", string(item.ContentType)).
		Set("stage", string(item.Stage)).
		Set("assigned_to", item.AssignedTo).
		Set("notes", nullString(item.Notes)).
		Set("published_url", nullString(item.PublishedURL)).
		Set("updated_at", item.UpdatedAt.UnixNano()).
		Where(sq.Eq{"id": item.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update content: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update content %s: %w", item.ID, err)
	}
	return requireRow(res, "content "+item.ID)
}

// ArmVerification marks the item pending under a new run number.
func (r *SQLRepository) ArmVerification(ctx context.Context, id string, at time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin arm: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	update, args, err := r.sb.Update("content_items").
		Set("verification_status", string(domain.VerificationPending)).
		Set("verification_score", nil).
		Set("verification_run", sq.Expr("verification_run + 1")).
		Set("verification_requested_at", at.UnixNano()).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build arm: %w", err)
	}
	res, err := tx.ExecContext(ctx, update, args...)
	if err != nil {
		return 0, fmt.Errorf("arm content %s: %w", id, err)
	}
	if err := requireRow(res, "content "+id); err != nil {
		return 0, err
	}

	sel, args, err := r.sb.Select("verification_run").From("content_items").
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build select run: %w", err)
	}
	var run int64
	if err := tx.QueryRowContext(ctx, sel, args...).Scan(&run); err != nil {
		return 0, fmt.Errorf("select run %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit arm: %w", err)
	}
	return run, nil
}

// DeleteContent removes the item; its verification records stay as history.
func (r *SQLRepository) DeleteContent(ctx context.Context, id string) error {
	query, args, err := r.sb.Delete("content_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete content: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete content %s: %w", id, err)
	}
	return requireRow(res, "content "+id)
}

// ListContent returns items matching the filter, oldest first.
func (r *SQLRepository) ListContent(ctx context.Context, filter domain.ContentFilter) ([]domain.ContentItem, error) {
	builder := r.sb.Select(contentColumns...).From("content_items").OrderBy("created_at ASC", "id ASC")
	if filter.Stage != "" {
		builder = builder.Where(sq.Eq{"stage": string(filter.Stage)})
	}
	if filter.CreatedBy != "" {
		builder = builder.Where(sq.Eq{"created_by": filter.CreatedBy})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"verification_status": string(filter.Status)})
	}
	if !filter.RequestedBefore.IsZero() {
		builder = builder.Where(sq.Lt{"verification_requested_at": filter.RequestedBefore.UnixNano()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list content: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ContentItem, 0)
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return items, nil
}

// PatchVerification writes the cached verdict, guarded by run when set.
func (r *SQLRepository) PatchVerification(ctx context.Context, id string, patch domain.VerificationPatch) (bool, error) {
	builder := r.sb.Update("content_items").
		Set("verification_status", string(patch.Status)).
		Where(sq.Eq{"id": id})
	if patch.Score != nil {
		builder = builder.Set("verification_score", *patch.Score)
	}
	if patch.Run != 0 {
		builder = builder.Where(sq.Eq{"verification_run": patch.Run})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("build patch verification: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("patch verification %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// SaveVerification appends a record.
func (r *SQLRepository) SaveVerification(ctx context.Context, record domain.VerificationRecord) error {
	checks, err := json.Marshal(record.Checks)
	if err != nil {
		return fmt.Errorf("marshal checks: %w", err)
	}
	reasons, err := json.Marshal(reasonsOrEmpty(record.IssueReasons))
	if err != nil {
		return fmt.Errorf("marshal issue reasons: %w", err)
	}

	query, args, err := r.sb.Insert("verification_records").
		Columns(recordColumns...).
		Values(
			record.ID, record.ContentID, record.AuthorID, record.Run, record.VerifiedAt.UnixNano(),
			string(checks), record.OverallPassed, record.OverallScore, string(reasons),
			record.Overridden, nullString(record.OverriddenBy), nullTime(record.OverriddenAt),
		).ToSql()
	if err != nil {
		return fmt.Errorf("build insert verification: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert verification %s: %w", record.ID, err)
	}
	return nil
}

// LatestVerification returns the newest record for an item.
func (r *SQLRepository) LatestVerification(ctx context.Context, contentID string) (domain.VerificationRecord, error) {
	records, err := r.ListVerifications(ctx, domain.VerificationFilter{ContentID: contentID, Limit: 1})
	if err != nil {
		return domain.VerificationRecord{}, err
	}
	if len(records) == 0 {
		return domain.VerificationRecord{}, fmt.Errorf("content %s: %w", contentID, domain.ErrNoVerification)
	}
	return records[0], nil
}

// ListVerifications returns records newest first.
func (r *SQLRepository) ListVerifications(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationRecord, error) {
	builder := r.sb.Select(recordColumns...).From("verification_records").
		OrderBy("verified_at DESC", "run DESC")
	if filter.AuthorID != "" {
		builder = builder.Where(sq.Eq{"author_id": filter.AuthorID})
	}
	if filter.ContentID != "" {
		builder = builder.Where(sq.Eq{"content_id": filter.ContentID})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list verifications: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query verifications: %w", err)
	}
	defer rows.Close()

	records := make([]domain.VerificationRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}

// MarkOverridden adds override metadata to a record.
func (r *SQLRepository) MarkOverridden(ctx context.Context, recordID, overriddenBy string, at time.Time) error {
	query, args, err := r.sb.Update("verification_records").
		Set("overridden", true).
		Set("overridden_by", overriddenBy).
		Set("overridden_at", at.UnixNano()).
		Where(sq.Eq{"id": recordID}).ToSql()
	if err != nil {
		return fmt.Errorf("build override: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("override verification %s: %w", recordID, err)
	}
	return requireRow(res, "verification "+recordID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (domain.ContentItem, error) {
	var (
		item                domain.ContentItem
		contentType, stage  string
		notes, publishedURL sql.NullString
		status              sql.NullString
		score               sql.NullInt64
		requestedAt         sql.NullInt64
		createdAt           int64
		updatedAt           int64
	)
	err := row.Scan(
		&item.ID, &item.Title, &item.Body, &contentType, &stage, &item.CreatedBy, &item.AssignedTo,
		&notes, &publishedURL, &status, &score, &item.VerificationRun, &requestedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return domain.ContentItem{}, err
	}

	item.ContentType = domain.ContentType(contentType)
	item.Stage = domain.Stage(stage)
	item.Notes = stringPtr(notes)
	item.PublishedURL = stringPtr(publishedURL)
	if status.Valid {
		s := domain.VerificationStatus(status.String)
		item.VerificationStatus = &s
	}
	if score.Valid {
		v := int(score.Int64)
		item.VerificationScore = &v
	}
	item.VerificationRequestedAt = timePtr(requestedAt)
	item.CreatedAt = time.Unix(0, createdAt).UTC()
	item.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return item, nil
}

func scanRecord(row rowScanner) (domain.VerificationRecord, error) {
	var (
		record       domain.VerificationRecord
		verifiedAt   int64
		checks       string
		reasons      string
		overriddenBy sql.NullString
		overriddenAt sql.NullInt64
	)
	err := row.Scan(
		&record.ID, &record.ContentID, &record.AuthorID, &record.Run, &verifiedAt, &checks,
		&record.OverallPassed, &record.OverallScore, &reasons,
		&record.Overridden, &overriddenBy, &overriddenAt,
	)
	if err != nil {
		return domain.VerificationRecord{}, err
	}

	if err := json.Unmarshal([]byte(checks), &record.Checks); err != nil {
		return domain.VerificationRecord{}, fmt.Errorf("decode checks: %w", err)
	}
	if err := json.Unmarshal([]byte(reasons), &record.IssueReasons); err != nil {
		return domain.VerificationRecord{}, fmt.Errorf("decode issue reasons: %w", err)
	}
	record.VerifiedAt = time.Unix(0, verifiedAt).UTC()
	record.OverriddenBy = stringPtr(overriddenBy)
	record.OverriddenAt = timePtr(overriddenAt)
	return record, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

func reasonsOrEmpty(reasons []domain.IssueReason) []domain.IssueReason {
	if reasons == nil {
		return []domain.IssueReason{}
	}
	return reasons
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullStatus(s *domain.VerificationStatus) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(ni sql.NullInt64) *time.Time {
	if !ni.Valid {
		return nil
	}
	t := time.Unix(0, ni.Int64).UTC()
	return &t
}
