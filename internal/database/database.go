package database

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"estateflow/server/internal/models"
)

// Open connects to the sqlite database at dbPath and enables foreign keys.
func Open(dbPath string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on", dbPath)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// MigrateSchema creates or updates the tables for every entity.
func MigrateSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.PropertyType{},
		&models.PropertyTag{},
		&models.Property{},
		&models.Offer{},
		&models.Invoice{},
		&models.InvoiceLine{},
	)
}

var testDBSeq int64

// NewTestDB opens a fresh in-memory database for tests. The shared-cache
// name keeps every pooled connection on the same database; the sequence
// keeps databases from leaking between tests.
func NewTestDB() (*gorm.DB, error) {
	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
