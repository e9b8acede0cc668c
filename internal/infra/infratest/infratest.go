// Package infratest opens throwaway databases for package tests.
package infratest

import (
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"roteiro/internal/config"
	"roteiro/internal/infra"
)

// NewDB returns a migrated in-memory SQLite database that is closed when the
// test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	log := zap.NewNop()
	db, err := infra.InitDatabase(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file::memory:",
	}, log)
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	t.Cleanup(func() { infra.CloseDatabase(db, log) })
	return db
}
