package entities

import "time"

// Rule is a named detection pattern. Edits go through the audit engine,
// which records a field-level diff for every mutation.
type Rule struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	OwnerID        *uint     `gorm:"index" json:"owner_id"`
	Pattern        string    `gorm:"size:2000;not null" json:"pattern"`
	Enabled        bool      `gorm:"not null;default:false" json:"enabled"`
	NotifyOnChange bool      `gorm:"not null;default:false" json:"notify_on_change"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Rule) TableName() string {
	return "rules"
}
