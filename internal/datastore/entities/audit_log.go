package entities

import "time"

// Audit actions recorded for rule mutations.
const (
	ActionRuleCreate = "rule.create"
	ActionRuleUpdate = "rule.update"
	ActionRuleDelete = "rule.delete"
)

// TargetTypeRule is the target type tag for rule audit entries.
const TargetTypeRule = "rule"

// FieldDiff is one field-level change recorded in an audit entry.
// Old and New hold the raw pre/post values; comparison at diff time is
// textual, so the stored values keep their original types.
type FieldDiff struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// AuditLog is an immutable, append-only record of one mutating operation.
// Diff and Metadata are JSON-encoded; Diff may be an empty array for pure
// no-op updates, which are still auditable operations.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    *uint     `gorm:"index" json:"actor_id"`
	Action     string    `gorm:"size:32;not null;index" json:"action"`
	TargetType string    `gorm:"size:32;not null;index:idx_audit_target" json:"target_type"`
	TargetID   uint      `gorm:"not null;index:idx_audit_target" json:"target_id"`
	Diff       string    `gorm:"type:text;not null" json:"diff"`
	Metadata   string    `gorm:"type:text" json:"metadata"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"ts"`
}

// TableName returns the table name for GORM.
func (AuditLog) TableName() string {
	return "audit_logs"
}
