package repository

import (
	"context"
	"fmt"

	"github.com/netsentry/netsentry/internal/datastore/entities"
	"github.com/netsentry/netsentry/internal/errors"
	"gorm.io/gorm"
)

// alertRepository implements AlertRepository.
type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new AlertRepository over the given DB handle,
// which may be a transaction.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

// Insert writes one alert row and populates its assigned ID.
func (r *alertRepository) Insert(ctx context.Context, alert *entities.Alert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// Get returns a single alert by ID. Returns ErrAlertNotFound if absent.
func (r *alertRepository) Get(ctx context.Context, id uint) (*entities.Alert, error) {
	var alert entities.Alert
	if err := r.db.WithContext(ctx).First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert %d: %w", id, err)
	}
	return &alert, nil
}

// List returns alerts matching the filter, newest first.
func (r *alertRepository) List(ctx context.Context, filter AlertFilter) ([]entities.Alert, error) {
	var alerts []entities.Alert
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// ClearRule nulls rule_id on all alerts referencing the given rule.
func (r *alertRepository) ClearRule(ctx context.Context, ruleID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entities.Alert{}).
		Where("rule_id = ?", ruleID).
		Update("rule_id", nil)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear rule %d from alerts: %w", ruleID, result.Error)
	}
	return result.RowsAffected, nil
}
