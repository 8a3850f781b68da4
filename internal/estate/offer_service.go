package estate

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"estateflow/server/internal/models"
)

// OfferService owns the offer lifecycle: creation against a live property,
// the accept/refuse transitions, and deadline arithmetic.
type OfferService struct {
	db     *gorm.DB
	logger *logrus.Logger
	sales  SaleSink
}

func NewOfferService(db *gorm.DB, logger *logrus.Logger, sink SaleSink) *OfferService {
	return &OfferService{db: db, logger: logger, sales: sink}
}

// OfferInput carries the fields of a new offer. ValidityDays defaults to 7
// when not positive.
type OfferInput struct {
	PropertyID   uint
	BuyerID      int64
	Price        float64
	ValidityDays int
}

// Create registers a bid on a property. Offers on canceled properties are
// rejected, as are offers below the property's current best price. The first
// offer on a new property moves it to offer_received.
func (s *OfferService) Create(ctx context.Context, input OfferInput) (*models.Offer, error) {
	if input.Price <= 0 {
		return nil, validationErrorf("price", "must be strictly positive")
	}
	if input.BuyerID == 0 {
		return nil, validationErrorf("buyer_id", "is required")
	}

	offer := &models.Offer{
		Price:        input.Price,
		BuyerID:      input.BuyerID,
		PropertyID:   input.PropertyID,
		ValidityDays: input.ValidityDays,
	}
	if offer.ValidityDays <= 0 {
		offer.ValidityDays = models.DefaultOfferValidityDays
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prop models.Property
		if err := findProperty(tx, input.PropertyID, &prop); err != nil {
			return err
		}
		if prop.State == models.StateCanceled {
			return domainErrorf("create offer", "cannot bid on a canceled property")
		}

		var best float64
		err := tx.Model(&models.Offer{}).
			Where("property_id = ?", input.PropertyID).
			Select("COALESCE(MAX(price), 0)").
			Scan(&best).Error
		if err != nil {
			return err
		}
		if best > 0 && amountCompare(input.Price, best) < 0 {
			return domainErrorf("create offer", "offer must not be lower than the current best offer (%.2f)", best)
		}

		offer.PropertyTypeID = prop.TypeID
		if err := tx.Create(offer).Error; err != nil {
			return err
		}

		if prop.State == models.StateNew {
			prop.State = models.StateOfferReceived
			return tx.Save(&prop).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// Accept marks the offer accepted and sells the property: the buyer and
// selling price come from the offer, and every sibling offer is refused.
// A property that was sold or canceled in the meantime makes the call fail
// with a DomainError; only one accept per property can ever succeed.
func (s *OfferService) Accept(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	var event *models.SaleEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOffer(tx, id, &offer); err != nil {
			return err
		}

		var prop models.Property
		if err := findProperty(tx, offer.PropertyID, &prop); err != nil {
			return err
		}
		switch prop.State {
		case models.StateCanceled:
			return domainErrorf("accept offer", "cannot accept an offer on a canceled property")
		case models.StateSold:
			return domainErrorf("accept offer", "property already sold")
		}

		// The 90% price floor applies to caller edits only, never to
		// acceptance.
		prop.BuyerID = &offer.BuyerID
		prop.SellingPrice = offer.Price
		prop.State = models.StateSold

		offer.Status = models.OfferAccepted
		if err := tx.Save(&offer).Error; err != nil {
			return err
		}
		if err := tx.Save(&prop).Error; err != nil {
			return err
		}

		// Refuse the siblings. An already-accepted sibling is tolerated here
		// rather than re-raised; the sold-state guard above is what prevents
		// a second accept from ever reaching this point.
		err := tx.Model(&models.Offer{}).
			Where("property_id = ? AND id <> ? AND status <> ?", prop.ID, offer.ID, models.OfferAccepted).
			Update("status", models.OfferRefused).Error
		if err != nil {
			return err
		}

		event = &models.SaleEvent{
			PropertyID:   prop.ID,
			BuyerID:      offer.BuyerID,
			SellingPrice: offer.Price,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.sales != nil && event != nil {
		if err := s.sales.Push(*event); err != nil {
			s.logger.WithError(err).WithField("property_id", event.PropertyID).
				Error("Failed to enqueue sale event")
		}
	}
	return &offer, nil
}

// Refuse marks the offer refused. An accepted offer can never be refused.
func (s *OfferService) Refuse(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOffer(tx, id, &offer); err != nil {
			return err
		}
		if offer.Status == models.OfferAccepted {
			return domainErrorf("refuse offer", "accepted offers cannot be refused")
		}
		offer.Status = models.OfferRefused
		return tx.Save(&offer).Error
	})
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// Get loads a single offer.
func (s *OfferService) Get(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	if err := findOffer(s.db.WithContext(ctx), id, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// OfferFilter narrows List. Zero fields are ignored.
type OfferFilter struct {
	PropertyID *uint
	TypeID     *uint
	Status     models.OfferStatus
}

// List returns offers highest price first, creation order breaking ties.
func (s *OfferService) List(ctx context.Context, filter OfferFilter) ([]models.Offer, error) {
	q := s.db.WithContext(ctx).Model(&models.Offer{})
	if filter.PropertyID != nil {
		q = q.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.TypeID != nil {
		q = q.Where("property_type_id = ?", *filter.TypeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var offers []models.Offer
	if err := q.Order("price DESC, id ASC").Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// SetDeadline moves the offer's expiry date, recomputing its validity in
// whole calendar days.
func (s *OfferService) SetDeadline(ctx context.Context, id uint, deadline time.Time) (*models.Offer, error) {
	var offer models.Offer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOffer(tx, id, &offer); err != nil {
			return err
		}
		offer.SetDeadline(deadline)
		if offer.ValidityDays < 0 {
			return validationErrorf("date_deadline", "cannot be before the offer's creation date")
		}
		return tx.Save(&offer).Error
	})
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func findOffer(tx *gorm.DB, id uint, offer *models.Offer) error {
	err := tx.First(offer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
