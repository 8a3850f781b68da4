package models

import "time"

// Invoice is the commission invoice produced when a property is sold.
// It is created by the invoicing consumer, never by the sale itself.
type Invoice struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	Number     string        `gorm:"uniqueIndex;not null" json:"number"`
	BuyerID    int64         `gorm:"not null;index" json:"buyer_id"`
	PropertyID uint          `gorm:"not null;index" json:"property_id"`
	Lines      []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines"`

	CreatedAt time.Time `json:"created_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// Total sums the invoice lines.
func (i *Invoice) Total() float64 {
	var total float64
	for _, l := range i.Lines {
		total += float64(l.Quantity) * l.UnitPrice
	}
	return total
}

// InvoiceLine is a single billed item on an invoice.
type InvoiceLine struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	InvoiceID   uint    `gorm:"not null;index" json:"invoice_id"`
	Description string  `gorm:"not null" json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

func (InvoiceLine) TableName() string {
	return "invoice_lines"
}
