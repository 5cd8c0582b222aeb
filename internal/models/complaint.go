package models

import "time"

// ComplaintStatus tracks a reported malfunction
type ComplaintStatus string

const (
	ComplaintNeedsRepair ComplaintStatus = "needs-repair"
	ComplaintUrgent      ComplaintStatus = "urgent"
	ComplaintInRepair    ComplaintStatus = "in-repair"
	ComplaintRepaired    ComplaintStatus = "repaired"
)

var complaintStatuses = []ComplaintStatus{ComplaintNeedsRepair, ComplaintUrgent, ComplaintInRepair, ComplaintRepaired}

// ComplaintStatuses lists every valid status.
func ComplaintStatuses() []ComplaintStatus {
	return append([]ComplaintStatus(nil), complaintStatuses...)
}

// Valid reports whether s is a known status
func (s ComplaintStatus) Valid() bool {
	for _, v := range complaintStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Complaint is a malfunction report filed against an asset
type Complaint struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	AssetID     uint            `gorm:"not null;index" json:"assetId"`
	SenderName  string          `gorm:"not null" json:"senderName"`
	Status      ComplaintStatus `gorm:"not null;default:'needs-repair';index" json:"status"`
	Description string          `gorm:"type:text;not null" json:"description"`
	ResolvedBy  *uint           `gorm:"index" json:"resolvedBy,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Relations
	Asset          *Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	ResolvedByUser *User  `gorm:"foreignKey:ResolvedBy" json:"-"`
}

// TableName specifies the table name for Complaint
func (Complaint) TableName() string {
	return "complaints"
}
