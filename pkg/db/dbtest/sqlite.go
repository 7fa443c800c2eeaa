// Package dbtest opens throwaway in-memory sqlite databases carrying the full
// fuel station schema for repository and service tests.
package dbtest

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/db"
	"github.com/sajith213/fuelstation-backend/pkg/db/models"
)

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&models.FuelType{},
		&models.Tank{},
		&models.Pump{},
		&models.Nozzle{},
		&models.MeterReading{},
		&models.InventoryLedgerEntry{},
		&models.OutboxEvent{},
		&models.OutboxDLQ{},
	}
}

// Open returns a migrated sqlite connection. A single pooled connection keeps
// shared-cache table locks from surfacing as SQLITE_LOCKED in concurrent tests.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(Models()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// OpenClient wraps Open in a db.Client.
func OpenClient(t testing.TB) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.NewFromConn(conn), conn
}
