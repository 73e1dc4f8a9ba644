package entities

import "time"

// Alert is one observed security event reported by the sensor or the API.
// Alerts are created by the ingestor and never updated in place.
type Alert struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Timestamp   time.Time `gorm:"not null;index" json:"ts"`
	SrcIP       string    `gorm:"size:64;not null" json:"src_ip"`
	DstIP       string    `gorm:"size:64;not null" json:"dst_ip"`
	Proto       *string   `gorm:"size:32" json:"proto"`
	Rule        *string   `gorm:"size:255" json:"rule"`
	RuleID      *uint     `gorm:"index" json:"rule_id"`
	Severity    string    `gorm:"size:16;not null;default:medium" json:"severity"`
	Description *string   `gorm:"size:2000" json:"desc"`
	PayloadRef  *string   `gorm:"size:255" json:"payload_ref"`
	Host        *string   `gorm:"size:255" json:"host"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName returns the table name for GORM.
func (Alert) TableName() string {
	return "alerts"
}
