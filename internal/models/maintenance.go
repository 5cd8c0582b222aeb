package models

import "time"

// MaintenanceSchedule is a planned (and eventually completed) service of an asset
type MaintenanceSchedule struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AssetID       uint       `gorm:"not null;index" json:"assetId"`
	ScheduledBy   uint       `gorm:"not null;index" json:"scheduledBy"`
	Title         string     `gorm:"not null" json:"title"`
	Description   *string    `gorm:"type:text" json:"description,omitempty"`
	ScheduledDate time.Time  `gorm:"not null;index" json:"scheduledDate"`
	IsCompleted   bool       `gorm:"not null;default:false;index" json:"isCompleted"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Relations
	Asset     *Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	Scheduler *User  `gorm:"foreignKey:ScheduledBy" json:"-"`
}

// TableName specifies the table name for MaintenanceSchedule
func (MaintenanceSchedule) TableName() string {
	return "maintenance_schedules"
}
