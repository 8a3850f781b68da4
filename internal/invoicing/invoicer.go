package invoicing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"estateflow/server/internal/models"
	"estateflow/server/internal/queue"
)

// Invoicer consumes sale events and creates commission invoices. It is a
// best-effort collaborator: a failed invoice is retried a few times and then
// logged, and the sale it belongs to is never rolled back.
type Invoicer struct {
	db         *gorm.DB
	logger     *logrus.Logger
	queue      *queue.SaleQueue
	rate       float64
	adminFee   float64
	maxRetries int
	retryDelay time.Duration
}

// Options tunes the invoicer. Zero values fall back to the domain defaults:
// a 6% commission, a 100.00 administrative fee, and 3 attempts.
type Options struct {
	CommissionRate    float64
	AdministrativeFee float64
	MaxRetries        int
	RetryDelay        time.Duration
}

func NewInvoicer(db *gorm.DB, saleQueue *queue.SaleQueue, opts Options, logger *logrus.Logger) *Invoicer {
	if opts.CommissionRate == 0 {
		opts.CommissionRate = 0.06
	}
	if opts.AdministrativeFee == 0 {
		opts.AdministrativeFee = 100.0
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	return &Invoicer{
		db:         db,
		logger:     logger,
		queue:      saleQueue,
		rate:       opts.CommissionRate,
		adminFee:   opts.AdministrativeFee,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
	}
}

// Start subscribes to the sale queue and begins consuming events.
func (i *Invoicer) Start() {
	i.queue.Subscribe(i.handleSale)
	i.queue.Start()
}

// handleSale creates the invoice for one sale, retrying on failure.
func (i *Invoicer) handleSale(event models.SaleEvent) error {
	var err error
	for attempt := 0; attempt <= i.maxRetries; attempt++ {
		if attempt > 0 {
			i.logger.Infof("Retrying invoice creation, attempt %d of %d", attempt, i.maxRetries)
			time.Sleep(i.retryDelay)
		}

		var invoice *models.Invoice
		err = i.db.Transaction(func(tx *gorm.DB) error {
			var txErr error
			invoice, txErr = i.createInvoice(tx, event)
			return txErr
		})
		if err == nil {
			i.logger.WithFields(logrus.Fields{
				"invoice":     invoice.Number,
				"property_id": event.PropertyID,
				"buyer_id":    event.BuyerID,
			}).Info("Created commission invoice")
			return nil
		}

		i.logger.WithError(err).Error("Invoice creation failed")
	}

	return fmt.Errorf("failed to create invoice after %d attempts: %w", i.maxRetries, err)
}

func (i *Invoicer) createInvoice(tx *gorm.DB, event models.SaleEvent) (*models.Invoice, error) {
	invoice := &models.Invoice{
		Number:     uuid.NewString(),
		BuyerID:    event.BuyerID,
		PropertyID: event.PropertyID,
		Lines: []models.InvoiceLine{
			{
				Description: fmt.Sprintf("Real estate commission (%.0f%%)", i.rate*100),
				Quantity:    1,
				UnitPrice:   event.SellingPrice * i.rate,
			},
			{
				Description: "Administrative fees",
				Quantity:    1,
				UnitPrice:   i.adminFee,
			},
		},
	}
	if err := tx.Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}
