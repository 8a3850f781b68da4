package models

import "time"

// DefaultTypeSequence is the sort position given to new property types.
const DefaultTypeSequence = 10

// PropertyType is an administrator-managed category of properties
// (house, apartment, ...). Types are listed by sequence, then name.
type PropertyType struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Sequence int    `json:"sequence"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PropertyType) TableName() string {
	return "property_types"
}

// PropertyTag is a free-form label attached to properties, with a display
// color hint for the UI.
type PropertyTag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"uniqueIndex;not null" json:"name"`
	Color string `json:"color,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (PropertyTag) TableName() string {
	return "property_tags"
}

// TypeWithOfferCount pairs a property type with the number of offers made
// against properties of that type. The count is computed, never stored.
type TypeWithOfferCount struct {
	PropertyType
	OfferCount int64 `json:"offer_count"`
}
