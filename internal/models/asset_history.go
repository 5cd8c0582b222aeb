package models

import "time"

// Change types written to the audit trail. The column is open: callers may
// append their own tags.
const (
	ChangeStatus            = "status_change"
	ChangeMaintenance       = "maintenance"
	ChangeArchived          = "archived"
	ChangeRestored          = "restored"
	ChangeComplaintResolved = "complaint_resolved"
)

// AssetHistory is one append-only audit row. ChangedBy nil means the change
// was made by the system.
type AssetHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AssetID     uint      `gorm:"not null;index" json:"assetId"`
	ChangedBy   *uint     `gorm:"index" json:"changedBy,omitempty"`
	ChangeType  string    `gorm:"not null;index" json:"changeType"`
	OldValue    *string   `gorm:"type:text" json:"oldValue,omitempty"`
	NewValue    *string   `gorm:"type:text" json:"newValue,omitempty"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`

	// Relations
	Asset         *Asset `gorm:"foreignKey:AssetID" json:"-"`
	ChangedByUser *User  `gorm:"foreignKey:ChangedBy" json:"-"`
}

// TableName specifies the table name for AssetHistory
func (AssetHistory) TableName() string {
	return "asset_histories"
}
