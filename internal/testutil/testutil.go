// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"riffraff/internal/platform/config"
	"riffraff/internal/platform/database"
)

// NewDB returns a migrated in-memory sqlite store that is closed when the
// test ends.
func NewDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{URL: "sqlite://:memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

// Config returns a valid configuration with a cheap bcrypt cost.
func Config() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{URL: "sqlite://:memory:"},
		JWT: config.JWTConfig{
			Secret:                   "test-secret",
			Algorithm:                "HS256",
			AccessTokenExpireMinutes: 15,
			RefreshTokenExpireDays:   15,
		},
		Auth:          config.AuthConfig{BcryptCost: 4},
		Organizations: config.OrganizationsConfig{DefaultTimeZone: "UTC"},
		Workers:       config.WorkersConfig{Count: 1, QueueSize: 8, TaskTimeout: 5 * time.Second},
		Logging:       config.LoggingConfig{Level: "error", Format: "json"},
	}
}
