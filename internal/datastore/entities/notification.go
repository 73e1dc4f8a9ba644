package entities

import "time"

// Notification queue statuses. The ingestion and audit paths only ever
// create pending entries; all other transitions belong to the external
// queue consumer.
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// NotificationQueueEntry is a durable "tell somebody downstream" record,
// decoupled from actual delivery. Recipients is null until the external
// notifier resolves it.
type NotificationQueueEntry struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EventType  string     `gorm:"size:64;not null;index" json:"event_type"`
	Payload    string     `gorm:"type:text;not null" json:"payload"`
	Recipients *string    `gorm:"type:text" json:"recipients"`
	Status     string     `gorm:"size:16;not null;default:pending;index:idx_queue_due" json:"status"`
	Attempts   int        `gorm:"not null;default:0" json:"attempts"`
	LastError  *string    `gorm:"type:text" json:"last_error"`
	NextRunAt  time.Time  `gorm:"index:idx_queue_due" json:"next_run_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	SentAt     *time.Time `json:"sent_at"`
}

// TableName returns the table name for GORM.
func (NotificationQueueEntry) TableName() string {
	return "notification_queue"
}
