package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
	"gorm.io/gorm"

	"github.com/sajith213/fuelstation-backend/pkg/config"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
)

type gormProvider interface {
	DB() *gorm.DB
}

// MaybeRunDev applies the embedded migrations on boot in dev when
// auto-migrate is enabled. Other environments run cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client gormProvider) error {
	if cfg == nil || !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if cfg.DB.IsSQLite() {
		logg.Warn(ctx, "skipping auto-migrate: migrations target postgres")
		return nil
	}
	if client == nil {
		return errors.New("database client is required")
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "applying embedded migrations")
	applied, version, err := upLocked(ctx, sqlDB, Embedded())
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"applied":        applied,
		"schema_version": version,
	}), "migrations applied")
	return nil
}

// upLocked migrates to the newest version while holding a postgres advisory
// lock, so services booting together apply each file once.
func upLocked(ctx context.Context, sqlDB *sql.DB, src Source) (int, int64, error) {
	fsys, err := fs.Sub(src.FS, src.Dir)
	if err != nil {
		return 0, 0, fmt.Errorf("open migration dir: %w", err)
	}
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return 0, 0, fmt.Errorf("migration lock: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys, goose.WithSessionLocker(locker))
	if err != nil {
		return 0, 0, fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), 0, fmt.Errorf("running goose up: %w", err)
	}
	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return len(results), 0, fmt.Errorf("get db version: %w", err)
	}
	return len(results), version, nil
}
