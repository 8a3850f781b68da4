package estate

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"estateflow/server/internal/database"
	"estateflow/server/internal/models"
)

const testUserID int64 = 42

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewTestDB()
	require.NoError(t, err)

	err = database.MigrateSchema(db)
	require.NoError(t, err)

	return db
}

// captureSink records pushed sale events so tests can assert on them.
type captureSink struct {
	mu     sync.Mutex
	events []models.SaleEvent
}

func (s *captureSink) Push(event models.SaleEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Events() []models.SaleEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SaleEvent(nil), s.events...)
}

type testServices struct {
	db         *gorm.DB
	sink       *captureSink
	catalog    *CatalogService
	properties *PropertyService
	offers     *OfferService
}

func newTestServices(t *testing.T) *testServices {
	db := setupTestDB(t)
	logger := logrus.New()
	sink := &captureSink{}
	currentUser := func(ctx context.Context) int64 { return testUserID }

	return &testServices{
		db:         db,
		sink:       sink,
		catalog:    NewCatalogService(db, logger),
		properties: NewPropertyService(db, logger, currentUser, sink),
		offers:     NewOfferService(db, logger, sink),
	}
}

func (s *testServices) createProperty(t *testing.T, expectedPrice float64) *models.Property {
	prop, err := s.properties.Create(context.Background(), PropertyInput{
		Name:          "Test Property",
		ExpectedPrice: expectedPrice,
	})
	require.NoError(t, err)
	return prop
}
