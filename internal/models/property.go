package models

import "time"

// PropertyState tracks a property through the sale workflow.
type PropertyState string

const (
	StateNew           PropertyState = "new"
	StateOfferReceived PropertyState = "offer_received"
	// StateOfferAccepted is never assigned by the transitions here (accepting
	// an offer moves the property straight to sold); it is recognized for rows
	// written by external tooling or older data.
	StateOfferAccepted PropertyState = "offer_accepted"
	StateSold          PropertyState = "sold"
	StateCanceled      PropertyState = "canceled"
)

// GardenOrientation is the compass orientation of a property's garden.
type GardenOrientation string

const (
	OrientationNorth GardenOrientation = "north"
	OrientationSouth GardenOrientation = "south"
	OrientationEast  GardenOrientation = "east"
	OrientationWest  GardenOrientation = "west"
)

// DefaultGardenArea is applied when the garden flag is toggled on in an editor.
const DefaultGardenArea = 10

// Property is the aggregate root of the brokerage workflow. It owns its
// offers and the state machine that moves it from listing to sale.
type Property struct {
	ID     uint          `gorm:"primaryKey" json:"id"`
	Name   string        `gorm:"not null" json:"name"`
	TypeID *uint         `gorm:"index" json:"type_id,omitempty"`
	Type   *PropertyType `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	Tags   []PropertyTag `gorm:"many2many:property_tag_links" json:"tags,omitempty"`
	Offers []Offer       `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"offers,omitempty"`

	// BuyerID is only set when an offer is accepted.
	BuyerID  *int64 `json:"buyer_id,omitempty"`
	SellerID int64  `gorm:"not null;index" json:"seller_id"`

	Description      string    `gorm:"type:text" json:"description,omitempty"`
	Postcode         string    `gorm:"index" json:"postcode,omitempty"`
	DateAvailability time.Time `json:"date_availability"`

	ExpectedPrice float64 `gorm:"not null" json:"expected_price"`
	SellingPrice  float64 `json:"selling_price"`

	Bedrooms   int  `json:"bedrooms"`
	LivingArea int  `json:"living_area"`
	Facades    int  `json:"facades"`
	Garage     bool `json:"garage"`
	Garden     bool `json:"garden"`
	GardenArea int  `json:"garden_area"`

	GardenOrientation GardenOrientation `gorm:"type:varchar(10)" json:"garden_orientation,omitempty"`

	// Active is a soft-delete marker; inactive properties are hidden from
	// default listings but keep their history.
	Active bool          `gorm:"not null" json:"active"`
	State  PropertyState `gorm:"type:varchar(20);not null;default:'new';index" json:"state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

// TotalArea is derived on every read, never stored.
func (p *Property) TotalArea() int {
	return p.LivingArea + p.GardenArea
}

// BestPrice returns the highest price among the loaded offers, or 0 when the
// property has none.
func (p *Property) BestPrice() float64 {
	var best float64
	for _, o := range p.Offers {
		if o.Price > best {
			best = o.Price
		}
	}
	return best
}

// Terminal reports whether the property can no longer change state.
func (p *Property) Terminal() bool {
	return p.State == StateSold || p.State == StateCanceled
}

// Deletable reports whether deleting the property is allowed.
func (p *Property) Deletable() bool {
	return p.State == StateNew || p.State == StateCanceled
}

// ApplyGardenDefaults mirrors the editor convenience of the garden toggle:
// switching it on fills in a default area and orientation, switching it off
// clears both. It is advisory only and never enforced at persistence.
func (p *Property) ApplyGardenDefaults() {
	if p.Garden {
		p.GardenArea = DefaultGardenArea
		p.GardenOrientation = OrientationNorth
	} else {
		p.GardenArea = 0
		p.GardenOrientation = ""
	}
}

// ValidOrientation reports whether o names a known compass orientation.
// The empty string is valid for properties without a garden.
func ValidOrientation(o GardenOrientation) bool {
	switch o {
	case "", OrientationNorth, OrientationSouth, OrientationEast, OrientationWest:
		return true
	}
	return false
}
