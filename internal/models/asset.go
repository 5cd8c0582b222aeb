package models

import "time"

// AssetCategory is the closed set of asset kinds
type AssetCategory string

const (
	CategoryMonitor        AssetCategory = "monitor"
	CategoryCPU            AssetCategory = "cpu"
	CategoryKeyboard       AssetCategory = "keyboard"
	CategoryMouse          AssetCategory = "mouse"
	CategoryPrinter        AssetCategory = "printer"
	CategoryLaptop         AssetCategory = "laptop"
	CategoryAirConditioner AssetCategory = "air-conditioner"
	CategoryProjector      AssetCategory = "projector"
	CategoryNetwork        AssetCategory = "network"
	CategoryFurniture      AssetCategory = "furniture"
	CategoryOther          AssetCategory = "other"
)

var assetCategories = []AssetCategory{
	CategoryMonitor, CategoryCPU, CategoryKeyboard, CategoryMouse, CategoryPrinter,
	CategoryLaptop, CategoryAirConditioner, CategoryProjector, CategoryNetwork,
	CategoryFurniture, CategoryOther,
}

// AssetCategories lists every valid category in display order.
func AssetCategories() []AssetCategory {
	return append([]AssetCategory(nil), assetCategories...)
}

// Valid reports whether c is a known category
func (c AssetCategory) Valid() bool {
	for _, v := range assetCategories {
		if v == c {
			return true
		}
	}
	return false
}

// AssetCondition is the physical state of an asset. The order below is a
// display convention only.
type AssetCondition string

const (
	ConditionNew         AssetCondition = "new"
	ConditionGood        AssetCondition = "good"
	ConditionUnderRepair AssetCondition = "under-repair"
	ConditionBroken      AssetCondition = "broken"
)

var assetConditions = []AssetCondition{ConditionNew, ConditionGood, ConditionUnderRepair, ConditionBroken}

// AssetConditions lists every valid condition.
func AssetConditions() []AssetCondition {
	return append([]AssetCondition(nil), assetConditions...)
}

// Valid reports whether c is a known condition
func (c AssetCondition) Valid() bool {
	for _, v := range assetConditions {
		if v == c {
			return true
		}
	}
	return false
}

// Asset is a physical inventory item.
// Convention: Go PascalCase -> DB snake_case (GORM auto) -> JSON camelCase
type Asset struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	Category    AssetCategory  `gorm:"not null;index" json:"category"`
	Condition   AssetCondition `gorm:"not null;default:'new';index" json:"condition"`
	Owner       string         `gorm:"not null" json:"owner"`
	PhotoURL    *string        `json:"photoUrl,omitempty"`
	QRCode      string         `gorm:"column:qr_code;uniqueIndex;not null" json:"qrCode"`
	IsArchived  bool           `gorm:"not null;default:false;index" json:"isArchived"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TableName specifies the table name for Asset
func (Asset) TableName() string {
	return "assets"
}
