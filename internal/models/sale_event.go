package models

// SaleEvent is emitted when a property transitions to sold with a buyer.
// Consumers (invoicing) receive it after the sale has committed; the sale
// never waits on them.
type SaleEvent struct {
	PropertyID   uint    `json:"property_id"`
	BuyerID      int64   `json:"buyer_id"`
	SellingPrice float64 `json:"selling_price"`
}
