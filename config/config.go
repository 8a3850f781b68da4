package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// HTTPAddr is the listen address of the API server
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":5250"`

	// DatabasePath is the sqlite database file
	DatabasePath string `env:"DATABASE_PATH" envDefault:"database/estate.db"`

	// DefaultSellerID is the user assigned as seller when a request
	// carries no identity
	DefaultSellerID int64 `env:"DEFAULT_SELLER_ID" envDefault:"1"`

	// Invoicing configuration
	Invoicing struct {
		// Commission charged on the selling price
		CommissionRate float64 `env:"INVOICE_COMMISSION_RATE" envDefault:"0.06"`

		// Fixed administrative fee added to every invoice
		AdministrativeFee float64 `env:"INVOICE_ADMIN_FEE" envDefault:"100"`

		// Buffer size of the sale event queue
		QueueSize int `env:"INVOICE_QUEUE_SIZE" envDefault:"64"`

		// Maximum number of retries for failed invoices
		MaxRetries int `env:"INVOICE_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"INVOICE_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
