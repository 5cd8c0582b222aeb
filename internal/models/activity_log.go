package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserActivityLog is an append-only record of what a user did
type UserActivityLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"userId"`
	Action       string         `gorm:"not null;index" json:"action"`
	ResourceType string         `gorm:"not null;index" json:"resourceType"`
	ResourceID   *uint          `json:"resourceId,omitempty"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"createdAt"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for UserActivityLog
func (UserActivityLog) TableName() string {
	return "user_activity_logs"
}
