package repository

import (
	"context"

	"github.com/netsentry/netsentry/internal/datastore/entities"
)

// RuleRepository handles detection rule rows. Mutations are expected to be
// driven by the audit engine inside a datastore transaction so that the
// rule write, the audit entry and any queued notification land atomically.
type RuleRepository interface {
	List(ctx context.Context) ([]entities.Rule, error)
	Get(ctx context.Context, id uint) (*entities.Rule, error)
	Create(ctx context.Context, rule *entities.Rule) error

	// Save persists the full row and bumps updated_at.
	Save(ctx context.Context, rule *entities.Rule) error
	Delete(ctx context.Context, id uint) error
}
