package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost/pos",
		"REDIS_URL":    "redis://localhost:6379",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "store-1", cfg.StoreID)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	require.Equal(t, 8*time.Hour, cfg.SessionTTL)
	require.Equal(t, 600, cfg.RateLimitPerMinute)
}

func TestLoadRequiresDatabase(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379",
	})
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":      "postgres://localhost/pos",
		"REDIS_URL":         "redis://localhost:6379",
		"PORT":              "9090",
		"STORE_NAME":        "Corner Cafe",
		"CATALOG_CACHE_TTL": "30s",
		"SESSION_TTL":       "2h",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "Corner Cafe", cfg.StoreName)
	require.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
}
