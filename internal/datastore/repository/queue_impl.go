package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/netsentry/netsentry/internal/datastore/entities"
	"gorm.io/gorm"
)

// queueRepository implements QueueRepository.
type queueRepository struct {
	db *gorm.DB
}

// NewQueueRepository creates a new QueueRepository over the given DB handle,
// which may be a transaction.
func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &queueRepository{db: db}
}

// Enqueue appends one entry. New entries are always pending with zero
// attempts regardless of what the caller set.
func (r *queueRepository) Enqueue(ctx context.Context, entry *entities.NotificationQueueEntry) error {
	entry.Status = entities.NotificationStatusPending
	entry.Attempts = 0
	if entry.NextRunAt.IsZero() {
		entry.NextRunAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// ListPending returns pending entries, newest first.
func (r *queueRepository) ListPending(ctx context.Context, limit int) ([]entities.NotificationQueueEntry, error) {
	return r.list(ctx, limit, true)
}

// List returns queue entries in any status, newest first.
func (r *queueRepository) List(ctx context.Context, limit int) ([]entities.NotificationQueueEntry, error) {
	return r.list(ctx, limit, false)
}

func (r *queueRepository) list(ctx context.Context, limit int, pendingOnly bool) ([]entities.NotificationQueueEntry, error) {
	var entries []entities.NotificationQueueEntry
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if pendingOnly {
		query = query.Where("status = ?", entities.NotificationStatusPending)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list notification queue: %w", err)
	}
	return entries, nil
}
