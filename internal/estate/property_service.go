package estate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"estateflow/server/internal/models"
)

// PropertyService owns the property aggregate: its creation, field updates,
// and the listing-to-sale state machine. Every transition runs inside one
// transaction; sqlite's single-writer transactions serialize concurrent
// transitions on the same property, so a losing accept or sale observes the
// committed state and fails with a DomainError instead of double-selling.
type PropertyService struct {
	db          *gorm.DB
	logger      *logrus.Logger
	currentUser CurrentUserFunc
	sales       SaleSink
}

// NewPropertyService creates a property service. sink may be nil when no
// sale consumer is wired (tests, offline tools).
func NewPropertyService(db *gorm.DB, logger *logrus.Logger, currentUser CurrentUserFunc, sink SaleSink) *PropertyService {
	return &PropertyService{
		db:          db,
		logger:      logger,
		currentUser: currentUser,
		sales:       sink,
	}
}

// PropertyInput carries the caller-settable fields of a property. Buyer,
// selling price and state are owned by the offer-acceptance and transition
// paths and cannot be set here.
type PropertyInput struct {
	Name              string
	TypeID            *uint
	TagIDs            []uint
	SellerID          *int64
	Description       string
	Postcode          string
	DateAvailability  time.Time
	ExpectedPrice     float64
	Bedrooms          *int
	LivingArea        int
	Facades           int
	Garage            bool
	Garden            bool
	GardenArea        int
	GardenOrientation models.GardenOrientation
}

// Create persists a new property in state "new". The seller defaults to the
// acting user when the input does not name one.
func (s *PropertyService) Create(ctx context.Context, input PropertyInput) (*models.Property, error) {
	prop := &models.Property{
		Name:              input.Name,
		TypeID:            input.TypeID,
		Description:       input.Description,
		Postcode:          input.Postcode,
		DateAvailability:  input.DateAvailability,
		ExpectedPrice:     input.ExpectedPrice,
		Bedrooms:          2,
		LivingArea:        input.LivingArea,
		Facades:           input.Facades,
		Garage:            input.Garage,
		Garden:            input.Garden,
		GardenArea:        input.GardenArea,
		GardenOrientation: input.GardenOrientation,
		Active:            true,
		State:             models.StateNew,
	}
	if input.Bedrooms != nil {
		prop.Bedrooms = *input.Bedrooms
	}
	if input.DateAvailability.IsZero() {
		prop.DateAvailability = time.Now().Truncate(24 * time.Hour)
	}
	if input.SellerID != nil {
		prop.SellerID = *input.SellerID
	} else {
		prop.SellerID = s.currentUser(ctx)
	}

	if err := validateProperty(prop); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		prop.Tags = tags
		return tx.Create(prop).Error
	})
	if err != nil {
		return nil, err
	}
	return prop, nil
}

// Update rewrites the caller-settable fields of a property and re-validates
// the whole record.
func (s *PropertyService) Update(ctx context.Context, id uint, input PropertyInput) (*models.Property, error) {
	var prop models.Property
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findProperty(tx, id, &prop); err != nil {
			return err
		}

		prop.Name = input.Name
		prop.TypeID = input.TypeID
		prop.Description = input.Description
		prop.Postcode = input.Postcode
		if !input.DateAvailability.IsZero() {
			prop.DateAvailability = input.DateAvailability
		}
		prop.ExpectedPrice = input.ExpectedPrice
		if input.Bedrooms != nil {
			prop.Bedrooms = *input.Bedrooms
		}
		prop.LivingArea = input.LivingArea
		prop.Facades = input.Facades
		prop.Garage = input.Garage
		prop.Garden = input.Garden
		prop.GardenArea = input.GardenArea
		prop.GardenOrientation = input.GardenOrientation
		if input.SellerID != nil {
			prop.SellerID = *input.SellerID
		}

		if err := validateProperty(&prop); err != nil {
			return err
		}

		if input.TagIDs != nil {
			tags, err := loadTags(tx, input.TagIDs)
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				err = tx.Model(&prop).Association("Tags").Clear()
			} else {
				err = tx.Model(&prop).Association("Tags").Replace(&tags)
			}
			if err != nil {
				return fmt.Errorf("failed to replace tags: %w", err)
			}
		}
		return tx.Save(&prop).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get loads a property with its type, tags and offers. Offers come back
// highest price first, creation order breaking ties.
func (s *PropertyService) Get(ctx context.Context, id uint) (*models.Property, error) {
	var prop models.Property
	err := s.db.WithContext(ctx).
		Preload("Type").
		Preload("Tags").
		Preload("Offers", func(db *gorm.DB) *gorm.DB {
			return db.Order("price DESC, id ASC")
		}).
		First(&prop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prop, nil
}

// PropertyFilter narrows List. Zero fields are ignored. Inactive properties
// are hidden unless IncludeInactive is set.
type PropertyFilter struct {
	State           models.PropertyState
	TypeID          *uint
	TagID           *uint
	Postcode        string
	IncludeInactive bool
}

// List returns properties newest first.
func (s *PropertyService) List(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	q := s.db.WithContext(ctx).Model(&models.Property{}).
		Preload("Type").
		Preload("Tags").
		Preload("Offers", func(db *gorm.DB) *gorm.DB {
			return db.Order("price DESC, id ASC")
		})

	if !filter.IncludeInactive {
		q = q.Where("active = ?", true)
	}
	if filter.State != "" {
		q = q.Where("state = ?", filter.State)
	}
	if filter.TypeID != nil {
		q = q.Where("type_id = ?", *filter.TypeID)
	}
	if filter.Postcode != "" {
		q = q.Where("postcode = ?", filter.Postcode)
	}
	if filter.TagID != nil {
		q = q.Joins("JOIN property_tag_links ptl ON ptl.property_id = properties.id").
			Where("ptl.property_tag_id = ?", *filter.TagID)
	}

	var props []models.Property
	if err := q.Order("properties.id DESC").Find(&props).Error; err != nil {
		return nil, err
	}
	return props, nil
}

// MarkSold transitions a property to sold. Canceled properties cannot be
// sold. Every offer that was not accepted is refused. The buyer, if any, was
// assigned by the accept path; MarkSold never picks one.
func (s *PropertyService) MarkSold(ctx context.Context, id uint) (*models.Property, error) {
	var event *models.SaleEvent
	var prop models.Property
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		event, err = markSoldTx(tx, id, &prop)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.emit(event)
	return &prop, nil
}

// MarkCanceled transitions a property to canceled, refusing all of its
// offers. Sold properties cannot be canceled; canceling an already-canceled
// property is a no-op.
func (s *PropertyService) MarkCanceled(ctx context.Context, id uint) (*models.Property, error) {
	var prop models.Property
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return markCanceledTx(tx, id, &prop)
	})
	if err != nil {
		return nil, err
	}
	return &prop, nil
}

// MarkSoldBatch sells every listed property inside one transaction; the
// first failure rolls back the whole batch.
func (s *PropertyService) MarkSoldBatch(ctx context.Context, ids []uint) error {
	var events []*models.SaleEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			var prop models.Property
			event, err := markSoldTx(tx, id, &prop)
			if err != nil {
				return err
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, event := range events {
		s.emit(event)
	}
	return nil
}

// MarkCanceledBatch cancels every listed property inside one transaction,
// all-or-nothing.
func (s *PropertyService) MarkCanceledBatch(ctx context.Context, ids []uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			var prop models.Property
			if err := markCanceledTx(tx, id, &prop); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a property. Only properties in state new or canceled may be
// deleted; their offers and tag links go with them.
func (s *PropertyService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prop models.Property
		if err := findProperty(tx, id, &prop); err != nil {
			return err
		}
		if !prop.Deletable() {
			return domainErrorf("delete property", "only new or canceled properties can be deleted")
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.Offer{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&prop).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&prop).Error
	})
}

func (s *PropertyService) emit(event *models.SaleEvent) {
	if event == nil || s.sales == nil {
		return
	}
	if err := s.sales.Push(*event); err != nil {
		s.logger.WithError(err).WithField("property_id", event.PropertyID).
			Error("Failed to enqueue sale event")
	}
}

// markSoldTx performs the sold transition inside tx. It returns a sale event
// when the property has a buyer, nil otherwise.
func markSoldTx(tx *gorm.DB, id uint, prop *models.Property) (*models.SaleEvent, error) {
	if err := findProperty(tx, id, prop); err != nil {
		return nil, err
	}
	if prop.State == models.StateCanceled {
		return nil, domainErrorf("sell property", "canceled properties cannot be sold")
	}
	if err := refuseOffers(tx, id, true); err != nil {
		return nil, err
	}
	prop.State = models.StateSold
	if err := tx.Save(prop).Error; err != nil {
		return nil, err
	}
	if prop.BuyerID == nil {
		return nil, nil
	}
	return &models.SaleEvent{
		PropertyID:   prop.ID,
		BuyerID:      *prop.BuyerID,
		SellingPrice: prop.SellingPrice,
	}, nil
}

func markCanceledTx(tx *gorm.DB, id uint, prop *models.Property) error {
	if err := findProperty(tx, id, prop); err != nil {
		return err
	}
	if prop.State == models.StateSold {
		return domainErrorf("cancel property", "sold properties cannot be canceled")
	}
	if err := refuseOffers(tx, id, false); err != nil {
		return err
	}
	prop.State = models.StateCanceled
	return tx.Save(prop).Error
}

// refuseOffers marks the property's offers refused. When keepAccepted is set
// the accepted offer, if any, is left alone.
func refuseOffers(tx *gorm.DB, propertyID uint, keepAccepted bool) error {
	q := tx.Model(&models.Offer{}).Where("property_id = ?", propertyID)
	if keepAccepted {
		q = q.Where("status <> ?", models.OfferAccepted)
	}
	return q.Update("status", models.OfferRefused).Error
}

func findProperty(tx *gorm.DB, id uint, prop *models.Property) error {
	err := tx.First(prop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func loadTags(tx *gorm.DB, ids []uint) ([]models.PropertyTag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.PropertyTag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, validationErrorf("tag_ids", "one or more tags do not exist")
	}
	return tags, nil
}
