package estate

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"estateflow/server/internal/models"
)

// CatalogService manages the reference records: property types and tags.
// These are administrator-maintained and never auto-created.
type CatalogService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewCatalogService(db *gorm.DB, logger *logrus.Logger) *CatalogService {
	return &CatalogService{db: db, logger: logger}
}

// CreateType adds a property type. Names are unique; sequence defaults to 10.
func (s *CatalogService) CreateType(ctx context.Context, name string, sequence int) (*models.PropertyType, error) {
	if name == "" {
		return nil, validationErrorf("name", "must not be empty")
	}
	if sequence == 0 {
		sequence = models.DefaultTypeSequence
	}
	typ := &models.PropertyType{Name: name, Sequence: sequence}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUniqueName(tx, &models.PropertyType{}, name, 0); err != nil {
			return err
		}
		return tx.Create(typ).Error
	})
	if err != nil {
		return nil, err
	}
	return typ, nil
}

// UpdateType renames or reorders a property type.
func (s *CatalogService) UpdateType(ctx context.Context, id uint, name string, sequence int) (*models.PropertyType, error) {
	if name == "" {
		return nil, validationErrorf("name", "must not be empty")
	}
	var typ models.PropertyType
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findRecord(tx, id, &typ); err != nil {
			return err
		}
		if err := checkUniqueName(tx, &models.PropertyType{}, name, id); err != nil {
			return err
		}
		typ.Name = name
		typ.Sequence = sequence
		return tx.Save(&typ).Error
	})
	if err != nil {
		return nil, err
	}
	return &typ, nil
}

// DeleteType removes a property type. Types still referenced by properties
// cannot be deleted.
func (s *CatalogService) DeleteType(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var typ models.PropertyType
		if err := findRecord(tx, id, &typ); err != nil {
			return err
		}
		var inUse int64
		if err := tx.Model(&models.Property{}).Where("type_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return domainErrorf("delete property type", "%d properties still use this type", inUse)
		}
		return tx.Delete(&typ).Error
	})
}

// ListTypes returns all types ordered by sequence then name, each with the
// number of offers made against properties of that type.
func (s *CatalogService) ListTypes(ctx context.Context) ([]models.TypeWithOfferCount, error) {
	var types []models.PropertyType
	err := s.db.WithContext(ctx).Order("sequence ASC, name ASC").Find(&types).Error
	if err != nil {
		return nil, err
	}

	result := make([]models.TypeWithOfferCount, 0, len(types))
	for _, typ := range types {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Offer{}).
			Where("property_type_id = ?", typ.ID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		result = append(result, models.TypeWithOfferCount{PropertyType: typ, OfferCount: count})
	}
	return result, nil
}

// CreateTag adds a property tag. Names are unique.
func (s *CatalogService) CreateTag(ctx context.Context, name, color string) (*models.PropertyTag, error) {
	if name == "" {
		return nil, validationErrorf("name", "must not be empty")
	}
	tag := &models.PropertyTag{Name: name, Color: color}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUniqueName(tx, &models.PropertyTag{}, name, 0); err != nil {
			return err
		}
		return tx.Create(tag).Error
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// UpdateTag renames or recolors a tag.
func (s *CatalogService) UpdateTag(ctx context.Context, id uint, name, color string) (*models.PropertyTag, error) {
	if name == "" {
		return nil, validationErrorf("name", "must not be empty")
	}
	var tag models.PropertyTag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findRecord(tx, id, &tag); err != nil {
			return err
		}
		if err := checkUniqueName(tx, &models.PropertyTag{}, name, id); err != nil {
			return err
		}
		tag.Name = name
		tag.Color = color
		return tx.Save(&tag).Error
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag removes a tag and its links to properties.
func (s *CatalogService) DeleteTag(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.PropertyTag
		if err := findRecord(tx, id, &tag); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM property_tag_links WHERE property_tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

// ListTags returns all tags ordered by name.
func (s *CatalogService) ListTags(ctx context.Context) ([]models.PropertyTag, error) {
	var tags []models.PropertyTag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// checkUniqueName rejects a duplicate name, ignoring the record with selfID
// so updates can keep their own name.
func checkUniqueName(tx *gorm.DB, model interface{}, name string, selfID uint) error {
	var count int64
	q := tx.Model(model).Where("name = ?", name)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return validationErrorf("name", "%q already exists", name)
	}
	return nil
}

func findRecord(tx *gorm.DB, id uint, dest interface{}) error {
	err := tx.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
