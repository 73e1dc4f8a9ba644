package repository

import (
	"context"

	"github.com/netsentry/netsentry/internal/datastore/entities"
)

// QueueRepository handles the durable notification queue. The ingestion and
// audit paths only enqueue; status transitions belong to the external
// consumer, which drains the queue with its own retry contract.
type QueueRepository interface {
	// Enqueue appends one pending entry and populates its assigned ID.
	Enqueue(ctx context.Context, entry *entities.NotificationQueueEntry) error
	ListPending(ctx context.Context, limit int) ([]entities.NotificationQueueEntry, error)
	List(ctx context.Context, limit int) ([]entities.NotificationQueueEntry, error)
}
