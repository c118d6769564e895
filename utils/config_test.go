package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, _, err := LoadConfig("testdata/missing.env")
	require.NoError(t, err)
	require.Equal(t, "8000", cfg.Port)
	require.Equal(t, "ecommerce", cfg.Database)
	require.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.08")))
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 30*time.Minute, cfg.CartIdleTime)
}

func TestLoadConfig_ReadsTaxRate(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TAX_RATE", "0.2")
	t.Setenv("PORT", "9090")

	cfg, _, err := LoadConfig("testdata/missing.env")
	require.NoError(t, err)
	require.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.2")))
	require.Equal(t, "9090", cfg.Port)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret":    {"JWT_SECRET": ""},
		"invalid tax rate":  {"JWT_SECRET": "s", "TAX_RATE": "lots"},
		"negative tax rate": {"JWT_SECRET": "s", "TAX_RATE": "-0.1"},
		"zero idle timeout": {"JWT_SECRET": "s", "CART_IDLE_TIMEOUT": "0s"},
		"bad idle timeout":  {"JWT_SECRET": "s", "CART_IDLE_TIMEOUT": "soon"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, _, err := LoadConfig("testdata/missing.env")
			require.Error(t, err)
		})
	}
}
