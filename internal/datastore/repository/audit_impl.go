package repository

import (
	"context"
	"fmt"

	"github.com/netsentry/netsentry/internal/datastore/entities"
	"gorm.io/gorm"
)

// auditRepository implements AuditRepository.
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository over the given DB handle,
// which may be a transaction.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Append writes one audit entry and populates its assigned ID.
func (r *auditRepository) Append(ctx context.Context, entry *entities.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// List returns audit entries matching the filter, newest first.
func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]entities.AuditLog, error) {
	var entries []entities.AuditLog
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
		if filter.TargetID > 0 {
			query = query.Where("target_id = ?", filter.TargetID)
		}
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
