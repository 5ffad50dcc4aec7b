package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/pitwall/internal/config"
)

// SetupTestDB connects to the database named by the PITWALL_TEST_* environment
// variables and ensures the schema exists. Tests that call it are skipped when
// no test database is configured.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv("PITWALL_TEST_DB_HOST")
	if host == "" {
		t.Skip("PITWALL_TEST_DB_HOST not set; skipping database-backed test")
	}

	cfg := &config.DatabaseConfig{
		Host:           host,
		Port:           5432,
		Name:           envOr("PITWALL_TEST_DB_NAME", "pitwall_test"),
		User:           envOr("PITWALL_TEST_DB_USER", "postgres"),
		Password:       os.Getenv("PITWALL_TEST_DB_PASSWORD"),
		SSLMode:        "disable",
		MaxConnections: 4,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDB(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to ensure test schema: %v", err)
	}

	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()
	db.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
