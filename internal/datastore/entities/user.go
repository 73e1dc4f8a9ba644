package entities

import "time"

// User is an operator account. Rules may reference a user as their owner;
// deleting a user nulls that reference.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"size:255;uniqueIndex" json:"username"`
	Email             string    `gorm:"size:255;uniqueIndex" json:"email"`
	Name              string    `gorm:"size:255" json:"name"`
	Role              string    `gorm:"size:32;not null;default:analyst" json:"role"`
	NotifyByEmail     bool      `gorm:"not null;default:true" json:"notify_by_email"`
	NotifyPreferences string    `gorm:"type:text;default:'{}'" json:"notify_preferences"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}
