package repository

import (
	"context"
	"fmt"

	"github.com/netsentry/netsentry/internal/datastore/entities"
	"github.com/netsentry/netsentry/internal/errors"
	"gorm.io/gorm"
)

// ruleRepository implements RuleRepository.
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepository over the given DB handle,
// which may be a transaction.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

// List returns all rules, most recently updated first.
func (r *ruleRepository) List(ctx context.Context) ([]entities.Rule, error) {
	var rules []entities.Rule
	if err := r.db.WithContext(ctx).
		Order("updated_at DESC, created_at DESC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

// Get returns a single rule by ID. Returns ErrRuleNotFound if absent.
func (r *ruleRepository) Get(ctx context.Context, id uint) (*entities.Rule, error) {
	var rule entities.Rule
	if err := r.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to get rule %d: %w", id, err)
	}
	return &rule, nil
}

// Create inserts a new rule and populates its assigned ID.
func (r *ruleRepository) Create(ctx context.Context, rule *entities.Rule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// Save persists the full rule row. GORM's autoUpdateTime bumps updated_at.
func (r *ruleRepository) Save(ctx context.Context, rule *entities.Rule) error {
	if rule.ID == 0 {
		return fmt.Errorf("failed to save rule: missing rule ID")
	}
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to save rule %d: %w", rule.ID, err)
	}
	return nil
}

// Delete removes a rule row. Returns ErrRuleNotFound if nothing was deleted.
func (r *ruleRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Rule{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete rule %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}
