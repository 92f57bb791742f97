package audit

import (
	"context"
	"sync"
	"time"

	"laptop-inventory-backend/internal/models"
	"laptop-inventory-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Feed keeps the most recent activity entries in the activityLog blob.
// It satisfies inventory.ActivityRecorder.
type Feed struct {
	mu      sync.Mutex
	store   store.Store
	log     *zap.Logger
	limit   int
	now     func() time.Time
	entries []models.ActivityEntry
}

func NewFeed(ctx context.Context, st store.Store, log *zap.Logger, limit int) (*Feed, error) {
	f := &Feed{store: st, log: log, limit: limit, now: time.Now}
	if _, err := store.LoadJSON(ctx, st, store.KeyActivityLog, &f.entries); err != nil {
		return nil, err
	}
	if f.entries == nil {
		f.entries = []models.ActivityEntry{}
	}
	return f, nil
}

// Record appends entry, dropping the oldest entries beyond the limit.
// Write failures are logged only; the feed never fails the caller.
func (f *Feed) Record(ctx context.Context, entry models.ActivityEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = f.now()
	}
	if entry.Level == "" {
		entry.Level = models.LevelInfo
	}

	f.entries = append(f.entries, entry)
	if f.limit > 0 && len(f.entries) > f.limit {
		f.entries = append([]models.ActivityEntry(nil), f.entries[len(f.entries)-f.limit:]...)
	}

	if err := store.SaveJSON(ctx, f.store, store.KeyActivityLog, f.entries); err != nil {
		f.log.Warn("activity log not saved", zap.Error(err))
	}
}

type ListFilter struct {
	EntityType string
	EntityID   string
	UserID     string
	Limit      int
}

// List returns matching entries, newest first.
func (f *Feed) List(filter ListFilter) []models.ActivityEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.ActivityEntry, 0)
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}
