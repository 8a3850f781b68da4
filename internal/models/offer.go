package models

import "time"

// OfferStatus is the lifecycle status of an offer. The zero value means the
// offer is still pending a decision.
type OfferStatus string

const (
	OfferAccepted OfferStatus = "accepted"
	OfferRefused  OfferStatus = "refused"
)

// DefaultOfferValidityDays is the validity window applied when an offer is
// created without one.
const DefaultOfferValidityDays = 7

// Offer is a buyer's bid on a property.
type Offer struct {
	ID     uint        `gorm:"primaryKey" json:"id"`
	Price  float64     `gorm:"not null" json:"price"`
	Status OfferStatus `gorm:"type:varchar(10);index" json:"status,omitempty"`

	BuyerID    int64 `gorm:"not null;index" json:"buyer_id"`
	PropertyID uint  `gorm:"not null;index" json:"property_id"`

	// PropertyTypeID is denormalized from the property at creation so offers
	// can be filtered by type without a join.
	PropertyTypeID *uint `gorm:"index" json:"property_type_id,omitempty"`

	ValidityDays int `json:"validity_days"`

	CreatedAt time.Time `json:"created_at"`
}

func (Offer) TableName() string {
	return "offers"
}

// Pending reports whether the offer has neither been accepted nor refused.
func (o *Offer) Pending() bool {
	return o.Status == ""
}

// Deadline is the date the offer expires: creation date plus validity, in
// calendar days with the time of day stripped.
func (o *Offer) Deadline() time.Time {
	return dateOf(o.CreatedAt).AddDate(0, 0, o.ValidityDays)
}

// SetDeadline recomputes the validity window from a target expiry date.
func (o *Offer) SetDeadline(deadline time.Time) {
	days := int(dateOf(deadline).Sub(dateOf(o.CreatedAt)).Hours() / 24)
	o.ValidityDays = days
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
