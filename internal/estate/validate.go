package estate

import (
	"math"

	"estateflow/server/internal/models"
)

// minSellingRatio is the lowest acceptable selling price as a fraction of the
// expected price.
const minSellingRatio = 0.90

// amountCompare compares two monetary amounts at 2-decimal precision,
// returning -1, 0 or 1. Rounding first avoids floating-point false positives
// on amounts that are equal to the cent.
func amountCompare(a, b float64) int {
	ra := math.Round(a * 100)
	rb := math.Round(b * 100)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	return 0
}

// validateProperty enforces the field-level constraints checked on every
// create and update.
func validateProperty(p *models.Property) error {
	if p.Name == "" {
		return validationErrorf("name", "must not be empty")
	}
	if p.ExpectedPrice <= 0 {
		return validationErrorf("expected_price", "must be strictly positive")
	}
	if p.SellingPrice < 0 {
		return validationErrorf("selling_price", "must not be negative")
	}
	if p.SellingPrice > 0 {
		minPrice := p.ExpectedPrice * minSellingRatio
		if amountCompare(p.SellingPrice, minPrice) < 0 {
			return validationErrorf("selling_price", "cannot be lower than 90%% of the expected price (%.2f)", minPrice)
		}
	}
	if p.Bedrooms < 0 {
		return validationErrorf("bedrooms", "must not be negative")
	}
	if p.LivingArea < 0 {
		return validationErrorf("living_area", "must not be negative")
	}
	if p.Facades < 0 {
		return validationErrorf("facades", "must not be negative")
	}
	if p.GardenArea < 0 {
		return validationErrorf("garden_area", "must not be negative")
	}
	if !models.ValidOrientation(p.GardenOrientation) {
		return validationErrorf("garden_orientation", "unknown orientation %q", p.GardenOrientation)
	}
	return nil
}
