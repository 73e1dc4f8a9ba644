package repository

import (
	"context"

	"github.com/netsentry/netsentry/internal/datastore/entities"
)

// AuditRepository handles the append-only audit trail.
type AuditRepository interface {
	// Append writes one audit entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *entities.AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]entities.AuditLog, error)
}

// AuditFilter controls audit listing queries. TargetType/TargetID scope the
// listing to one object; a zero filter lists everything.
type AuditFilter struct {
	TargetType string
	TargetID   uint
	Limit      int
}
