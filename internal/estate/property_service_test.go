package estate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estateflow/server/internal/models"
)

func TestPropertyService_Create_Defaults(t *testing.T) {
	s := newTestServices(t)

	prop := s.createProperty(t, 200000)

	assert.Equal(t, models.StateNew, prop.State)
	assert.True(t, prop.Active)
	assert.Equal(t, 2, prop.Bedrooms)
	assert.Equal(t, testUserID, prop.SellerID)
	assert.Nil(t, prop.BuyerID)
	assert.False(t, prop.DateAvailability.IsZero())
}

func TestPropertyService_Create_ExplicitSeller(t *testing.T) {
	s := newTestServices(t)
	seller := int64(7)

	prop, err := s.properties.Create(context.Background(), PropertyInput{
		Name:          "Villa",
		ExpectedPrice: 450000,
		SellerID:      &seller,
	})
	require.NoError(t, err)
	assert.Equal(t, seller, prop.SellerID)
}

func TestPropertyService_Create_Validation(t *testing.T) {
	s := newTestServices(t)

	_, err := s.properties.Create(context.Background(), PropertyInput{
		Name:          "Free house",
		ExpectedPrice: 0,
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	negative := -1
	_, err = s.properties.Create(context.Background(), PropertyInput{
		Name:          "Odd house",
		ExpectedPrice: 100000,
		Bedrooms:      &negative,
	})
	assert.ErrorAs(t, err, &verr)
}

func TestPropertyService_Update_SellingPriceFloor(t *testing.T) {
	s := newTestServices(t)
	prop := s.createProperty(t, 200000)

	offer, err := s.offers.Create(context.Background(), OfferInput{
		PropertyID: prop.ID,
		BuyerID:    100,
		Price:      190000,
	})
	require.NoError(t, err)
	_, err = s.offers.Accept(context.Background(), offer.ID)
	require.NoError(t, err)

	// Raising the expected price now breaks the 90% floor against the
	// committed selling price.
	_, err = s.properties.Update(context.Background(), prop.ID, PropertyInput{
		Name:          prop.Name,
		ExpectedPrice: 400000,
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "selling_price", verr.Field)
}

func TestPropertyService_Update_RewritesFields(t *testing.T) {
	s := newTestServices(t)
	prop := s.createProperty(t, 200000)

	updated, err := s.properties.Update(context.Background(), prop.ID, PropertyInput{
		Name:              "Renamed",
		ExpectedPrice:     250000,
		LivingArea:        120,
		GardenArea:        30,
		Garden:            true,
		GardenOrientation: models.OrientationSouth,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 250000.0, updated.ExpectedPrice)
	assert.Equal(t, 150, updated.TotalArea())
}

func TestPropertyService_Get_DerivedFields(t *testing.T) {
	s := newTestServices(t)
	prop := s.createProperty(t, 200000)

	_, err := s.offers.Create(context.Background(), OfferInput{PropertyID: prop.ID, BuyerID: 1, Price: 150000})
	require.NoError(t, err)
	_, err = s.offers.Create(context.Background(), OfferInput{PropertyID: prop.ID, BuyerID: 2, Price: 180000})
	require.NoError(t, err)

	loaded, err := s.properties.Get(context.Background(), prop.ID)
	require.NoError(t, err)
	assert.Equal(t, 180000.0, loaded.BestPrice())
	// Offers come back highest price first.
	require.Len(t, loaded.Offers, 2)
	assert.Equal(t, 180000.0, loaded.Offers[0].Price)
}

func TestPropertyService_Get_NotFound(t *testing.T) {
	s := newTestServices(t)

	_, err := s.properties.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropertyService_MarkSold_RefusesPendingOffers(t *testing.T) {
	s := newTestServices(t)
	prop := s.createProperty(t, 200000)

	_, err := s.offers.Create(context.Background(), OfferInput{PropertyID: prop.ID, BuyerID: 1, Price: 150000})
	require.NoError(t, err)

	sold, err := s.properties.MarkSold(context.Background(), prop.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateSold, sold.State)
	// No buyer was ever assigned, so no sale event is emitted.
	assert.Empty(t, s.sink.Events())

	offers, err := s.offers.List(context.Background(), OfferFilter{PropertyID: &prop.ID})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, models.OfferRefused, offers[0].Status)
}

func TestPropertyService_MarkSold_KeepsAcceptedOffer(t *testing.T) {
	s := newTestServices(t)
	prop := s.createProperty(t, 200000)

	offer, err := s.offers.Create(context.Background(), OfferInput{PropertyID: prop.ID, BuyerID: 1, Price: 190000})
	require.NoError(t, err)
	_, err = s.offers.Accept(context.Background(), offer.ID)
	require.NoError(t, err)

	_, err = s.properties.MarkSold(context.Background(), prop.ID)
	require.NoError(t, err)

	reloaded, err := s.offers.Get(context.Background(), offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferAccepted, reloaded.Status)
}

func TestPropertyService_MarkSold_CanceledFails(t *testing.T) {
	s := newTestServices(t)
	prop := s.createProperty(t, 200000)

	_, err := s.properties.MarkCanceled(context.Background(), prop.ID)
	require.NoError(t, err)

	_, err = s.properties.MarkSold(context.Background(), prop.ID)
	var derr *DomainError
	assert.ErrorAs(t, err, &derr)
}

func TestPropertyService_MarkCanceled(t *testing.T) {
	s := newTestServices(t)
	prop := s.createProperty(t, 200000)

	_, err := s.offers.Create(context.Background(), OfferInput{PropertyID: prop.ID, BuyerID: 1, Price: 150000})
	require.NoError(t, err)

	canceled, err := s.properties.MarkCanceled(context.Background(), prop.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateCanceled, canceled.State)

	offers, err := s.offers.List(context.Background(), OfferFilter{PropertyID: &prop.ID})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, models.OfferRefused, offers[0].Status)
}

func TestPropertyService_MarkCanceled_Idempotent(t *testing.T) {
	s := newTestServices(t)
	prop := s.createProperty(t, 200000)

	_, err := s.properties.MarkCanceled(context.Background(), prop.ID)
	require.NoError(t, err)

	// Canceling again is a no-op, never an error.
	again, err := s.properties.MarkCanceled(context.Background(), prop.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateCanceled, again.State)
}

func TestPropertyService_MarkCanceled_SoldFails(t *testing.T) {
	s := newTestServices(t)
	prop := s.createProperty(t, 200000)

	_, err := s.properties.MarkSold(context.Background(), prop.ID)
	require.NoError(t, err)

	_, err = s.properties.MarkCanceled(context.Background(), prop.ID)
	var derr *DomainError
	assert.ErrorAs(t, err, &derr)
}

func TestPropertyService_Delete(t *testing.T) {
	s := newTestServices(t)

	t.Run("new property can be deleted", func(t *testing.T) {
		prop := s.createProperty(t, 200000)
		assert.NoError(t, s.properties.Delete(context.Background(), prop.ID))
	})

	t.Run("canceled property can be deleted", func(t *testing.T) {
		prop := s.createProperty(t, 200000)
		_, err := s.properties.MarkCanceled(context.Background(), prop.ID)
		require.NoError(t, err)
		assert.NoError(t, s.properties.Delete(context.Background(), prop.ID))
	})

	t.Run("property with offers cannot be deleted", func(t *testing.T) {
		prop := s.createProperty(t, 200000)
		_, err := s.offers.Create(context.Background(), OfferInput{PropertyID: prop.ID, BuyerID: 1, Price: 150000})
		require.NoError(t, err)

		err = s.properties.Delete(context.Background(), prop.ID)
		var derr *DomainError
		assert.ErrorAs(t, err, &derr)
	})

	t.Run("sold property cannot be deleted", func(t *testing.T) {
		prop := s.createProperty(t, 200000)
		_, err := s.properties.MarkSold(context.Background(), prop.ID)
		require.NoError(t, err)

		err = s.properties.Delete(context.Background(), prop.ID)
		var derr *DomainError
		assert.ErrorAs(t, err, &derr)
	})
}

func TestPropertyService_MarkSoldBatch_AllOrNothing(t *testing.T) {
	s := newTestServices(t)

	first := s.createProperty(t, 200000)
	second := s.createProperty(t, 300000)
	_, err := s.properties.MarkCanceled(context.Background(), second.ID)
	require.NoError(t, err)

	err = s.properties.MarkSoldBatch(context.Background(), []uint{first.ID, second.ID})
	var derr *DomainError
	require.ErrorAs(t, err, &derr)

	// The canceled member failed, so the whole batch rolled back.
	reloaded, err := s.properties.Get(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateNew, reloaded.State)
}

func TestPropertyService_MarkCanceledBatch(t *testing.T) {
	s := newTestServices(t)

	first := s.createProperty(t, 200000)
	second := s.createProperty(t, 300000)

	err := s.properties.MarkCanceledBatch(context.Background(), []uint{first.ID, second.ID})
	require.NoError(t, err)

	for _, id := range []uint{first.ID, second.ID} {
		prop, err := s.properties.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StateCanceled, prop.State)
	}
}

func TestPropertyService_List_Filters(t *testing.T) {
	s := newTestServices(t)

	typ, err := s.catalog.CreateType(context.Background(), "House", 0)
	require.NoError(t, err)

	_, err = s.properties.Create(context.Background(), PropertyInput{
		Name:          "Typed",
		ExpectedPrice: 100000,
		TypeID:        &typ.ID,
		Postcode:      "1000AA",
	})
	require.NoError(t, err)
	other := s.createProperty(t, 200000)
	_, err = s.properties.MarkCanceled(context.Background(), other.ID)
	require.NoError(t, err)

	byType, err := s.properties.List(context.Background(), PropertyFilter{TypeID: &typ.ID})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "Typed", byType[0].Name)

	byState, err := s.properties.List(context.Background(), PropertyFilter{State: models.StateCanceled})
	require.NoError(t, err)
	require.Len(t, byState, 1)
	assert.Equal(t, other.ID, byState[0].ID)

	byPostcode, err := s.properties.List(context.Background(), PropertyFilter{Postcode: "1000AA"})
	require.NoError(t, err)
	require.Len(t, byPostcode, 1)
}

func TestPropertyService_List_TagFilter(t *testing.T) {
	s := newTestServices(t)

	tag, err := s.catalog.CreateTag(context.Background(), "garden", "green")
	require.NoError(t, err)

	_, err = s.properties.Create(context.Background(), PropertyInput{
		Name:          "Tagged",
		ExpectedPrice: 100000,
		TagIDs:        []uint{tag.ID},
	})
	require.NoError(t, err)
	s.createProperty(t, 200000)

	tagged, err := s.properties.List(context.Background(), PropertyFilter{TagID: &tag.ID})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "Tagged", tagged[0].Name)
}
