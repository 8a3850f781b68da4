package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":5250", cfg.HTTPAddr)
	assert.Equal(t, "database/estate.db", cfg.DatabasePath)
	assert.Equal(t, int64(1), cfg.DefaultSellerID)
	assert.Equal(t, 0.06, cfg.Invoicing.CommissionRate)
	assert.Equal(t, 100.0, cfg.Invoicing.AdministrativeFee)
	assert.Equal(t, 64, cfg.Invoicing.QueueSize)
	assert.Equal(t, 3, cfg.Invoicing.MaxRetries)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("INVOICE_COMMISSION_RATE", "0.08")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 0.08, cfg.Invoicing.CommissionRate)
}
