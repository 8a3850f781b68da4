package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOffer_Deadline(t *testing.T) {
	created := time.Date(2025, 3, 1, 14, 30, 45, 0, time.UTC)
	o := &Offer{CreatedAt: created, ValidityDays: 7}

	// The time of day is stripped before adding the validity window.
	assert.Equal(t, time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), o.Deadline())
}

func TestOffer_SetDeadline(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	o := &Offer{CreatedAt: created, ValidityDays: 7}

	o.SetDeadline(time.Date(2025, 3, 11, 18, 15, 0, 0, time.UTC))
	assert.Equal(t, 10, o.ValidityDays)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), o.Deadline())
}

func TestOffer_SetDeadline_SameDay(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	o := &Offer{CreatedAt: created, ValidityDays: 7}

	o.SetDeadline(created)
	assert.Equal(t, 0, o.ValidityDays)
}

func TestOffer_Pending(t *testing.T) {
	o := &Offer{}
	assert.True(t, o.Pending())

	o.Status = OfferAccepted
	assert.False(t, o.Pending())

	o.Status = OfferRefused
	assert.False(t, o.Pending())
}
