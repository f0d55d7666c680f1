package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ContentGate/internal/domain"
	"ContentGate/internal/ports"
)

// MemoryRepository keeps everything in process memory. It backs the
// "memory" database driver and the use-case tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	items   map[string]domain.ContentItem
	records []domain.VerificationRecord
}

var _ ports.ContentRepository = (*MemoryRepository)(nil)
var _ ports.VerificationRepository = (*MemoryRepository)(nil)

// NewMemoryRepository builds an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: map[string]domain.ContentItem{}}
}

// CreateContent stores a copy of a new item.
func (m *MemoryRepository) CreateContent(_ context.Context, item domain.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; ok {
		return fmt.Errorf("content %s already exists", item.ID)
	}
	m.items[item.ID] = cloneItem(item)
	return nil
}

// GetContent returns a copy of one item or domain.ErrNotFound.
func (m *MemoryRepository) GetContent(_ context.Context, id string) (domain.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return domain.ContentItem{}, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	return cloneItem(item), nil
}

// UpdateContent replaces the editable fields, keeping the cached verdict.
func (m *MemoryRepository) UpdateContent(_ context.Context, item domain.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.items[item.ID]
	if !ok {
		return fmt.Errorf("content %s: %w", item.ID, domain.ErrNotFound)
	}
	updated := cloneItem(item)
	updated.CreatedBy = current.CreatedBy
	updated.CreatedAt = current.CreatedAt
	updated.VerificationStatus = current.VerificationStatus
	updated.VerificationScore = current.VerificationScore
	updated.VerificationRun = current.VerificationRun
	updated.VerificationRequestedAt = current.VerificationRequestedAt
	m.items[item.ID] = updated
	return nil
}

// ArmVerification marks the item pending under the next run number.
func (m *MemoryRepository) ArmVerification(_ context.Context, id string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return 0, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	run := item.ArmVerification(at)
	m.items[id] = item
	return run, nil
}

// DeleteContent removes the item; its records stay as history.
func (m *MemoryRepository) DeleteContent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

// ListContent returns items matching the filter, oldest first.
func (m *MemoryRepository) ListContent(_ context.Context, filter domain.ContentFilter) ([]domain.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]domain.ContentItem, 0)
	for _, item := range m.items {
		if filter.Stage != "" && item.Stage != filter.Stage {
			continue
		}
		if filter.CreatedBy != "" && item.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.Status != "" && (item.VerificationStatus == nil || *item.VerificationStatus != filter.Status) {
			continue
		}
		if !filter.RequestedBefore.IsZero() &&
			(item.VerificationRequestedAt == nil || !item.VerificationRequestedAt.Before(filter.RequestedBefore)) {
			continue
		}
		items = append(items, cloneItem(item))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// PatchVerification writes the cached verdict, guarded by run when set.
func (m *MemoryRepository) PatchVerification(_ context.Context, id string, patch domain.VerificationPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return false, nil
	}
	if patch.Run != 0 && item.VerificationRun != patch.Run {
		return false, nil
	}
	status := patch.Status
	item.VerificationStatus = &status
	if patch.Score != nil {
		score := *patch.Score
		item.VerificationScore = &score
	}
	m.items[id] = item
	return true, nil
}

// SaveVerification appends a record.
func (m *MemoryRepository) SaveVerification(_ context.Context, record domain.VerificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

// LatestVerification returns the newest record for an item.
func (m *MemoryRepository) LatestVerification(ctx context.Context, contentID string) (domain.VerificationRecord, error) {
	records, _ := m.ListVerifications(ctx, domain.VerificationFilter{ContentID: contentID, Limit: 1})
	if len(records) == 0 {
		return domain.VerificationRecord{}, fmt.Errorf("content %s: %w", contentID, domain.ErrNoVerification)
	}
	return records[0], nil
}

// ListVerifications returns records newest first.
func (m *MemoryRepository) ListVerifications(_ context.Context, filter domain.VerificationFilter) ([]domain.VerificationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.VerificationRecord, 0)
	for _, rec := range m.records {
		if filter.AuthorID != "" && rec.AuthorID != filter.AuthorID {
			continue
		}
		if filter.ContentID != "" && rec.ContentID != filter.ContentID {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].VerifiedAt.Equal(out[j].VerifiedAt) {
			return out[i].Run > out[j].Run
		}
		return out[i].VerifiedAt.After(out[j].VerifiedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// MarkOverridden adds override metadata to a record.
func (m *MemoryRepository) MarkOverridden(_ context.Context, recordID, overriddenBy string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID != recordID {
			continue
		}
		by := overriddenBy
		m.records[i].Overridden = true
		m.records[i].OverriddenBy = &by
		m.records[i].OverriddenAt = &at
		return nil
	}
	return fmt.Errorf("verification %s: %w", recordID, domain.ErrNotFound)
}

func cloneItem(item domain.ContentItem) domain.ContentItem {
	out := item
	if item.Notes != nil {
		v := *item.Notes
		out.Notes = &v
	}
	if item.PublishedURL != nil {
		v := *item.PublishedURL
		out.PublishedURL = &v
	}
	if item.VerificationStatus != nil {
		v := *item.VerificationStatus
		out.VerificationStatus = &v
	}
	if item.VerificationScore != nil {
		v := *item.VerificationScore
		out.VerificationScore = &v
	}
	if item.VerificationRequestedAt != nil {
		v := *item.VerificationRequestedAt
		out.VerificationRequestedAt = &v
	}
	return out
}
