package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estateflow/server/config"
	"estateflow/server/internal/api"
	"estateflow/server/internal/database"
	"estateflow/server/internal/estate"
	"estateflow/server/internal/invoicing"
	"estateflow/server/internal/queue"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.WithError(err).Fatal("Failed to create database directory")
		}
	}
	logger.Infof("Using database at: %s", cfg.DatabasePath)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	logger.Info("Running database migrations...")
	if err := database.MigrateSchema(db); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// The sale queue decouples invoicing from the sale transaction.
	saleQueue := queue.NewSaleQueue(cfg.Invoicing.QueueSize, logger)
	defer saleQueue.Close()

	invoicer := invoicing.NewInvoicer(db, saleQueue, invoicing.Options{
		CommissionRate:    cfg.Invoicing.CommissionRate,
		AdministrativeFee: cfg.Invoicing.AdministrativeFee,
		MaxRetries:        cfg.Invoicing.MaxRetries,
		RetryDelay:        time.Duration(cfg.Invoicing.RetryDelay) * time.Second,
	}, logger)
	invoicer.Start()

	currentUser := func(ctx context.Context) int64 { return cfg.DefaultSellerID }

	catalog := estate.NewCatalogService(db, logger)
	properties := estate.NewPropertyService(db, logger, currentUser, saleQueue)
	offers := estate.NewOfferService(db, logger, saleQueue)

	handler := api.NewHandler(catalog, properties, offers, logger)

	router := gin.Default()
	api.RegisterRoutes(router, handler)

	logger.Infof("Starting server on %s", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
