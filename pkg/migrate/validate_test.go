package migrate

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/sajith213/fuelstation-backend/pkg/config"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := Validate(Embedded()); err != nil {
		t.Fatalf("validate embedded migrations: %v", err)
	}
}

func TestEmbeddedMatchesDisk(t *testing.T) {
	disk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	bundled, err := embedded.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded: %v", err)
	}
	if len(disk) != len(bundled) {
		t.Fatalf("expected %d embedded migrations, got %d", len(disk), len(bundled))
	}
}

func TestCreateSQLMigrationProducesValidFile(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Tank Alerts!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_tank_alerts.sql") {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("validate created migration: %v", err)
	}
	if _, err := CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected error for name without usable characters")
	}
}

func TestCreateSQLMigrationOrdersAfterExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20300101000000_create_tanks.sql"), []byte("-- +goose Up\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	path, err := createSQLMigration(dir, "tank alerts", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if got := filepath.Base(path); got != "20300101000001_tank_alerts.sql" {
		t.Fatalf("expected version after newest file, got %s", got)
	}
	if _, err := createSQLMigration(dir, "Tank Alerts", now); err == nil {
		t.Fatal("expected duplicate slug to be rejected")
	}
	if _, err := createSQLMigration("", "x", now); err == nil {
		t.Fatal("expected missing dir to be rejected")
	}
}

func TestValidateRejectsBadFiles(t *testing.T) {
	const ok = "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose StatementEnd\n-- +goose Down\n"
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "bad filename",
			files: map[string]string{"create_tanks.sql": ok},
			want:  "invalid migration filename",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"20261001090000_a.sql": ok,
				"20261001090000_b.sql": ok,
			},
			want: "duplicate migration version",
		},
		{
			name:  "missing down",
			files: map[string]string{"20261001090000_a.sql": "-- +goose Up\n"},
			want:  "missing \"-- +goose Down\"",
		},
		{
			name:  "down before up",
			files: map[string]string{"20261001090000_a.sql": "-- +goose Down\n-- +goose Up\n"},
			want:  "Down before Up",
		},
		{
			name:  "unbalanced statement block",
			files: map[string]string{"20261001090000_a.sql": "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"},
			want:  "StatementBegin",
		},
		{
			name:  "empty",
			files: map[string]string{"README.md": "notes"},
			want:  "no migrations found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for name, body := range tc.files {
				fsys["sql/"+name] = &fstest.MapFile{Data: []byte(body)}
			}
			err := Validate(Source{FS: fsys, Dir: "sql"})
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestRunRequiresDatabaseAndSource(t *testing.T) {
	if err := Run(context.Background(), nil, Embedded(), "up"); err == nil {
		t.Fatal("expected error without db")
	}
	if err := Run(context.Background(), &sql.DB{}, Source{}, "up"); err == nil {
		t.Fatal("expected error without source")
	}
	if err := MigrateToVersion(context.Background(), &sql.DB{}, Embedded(), "latest"); err == nil {
		t.Fatal("expected error for non-numeric version")
	}
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "prod"
	cfg.FeatureFlags.AutoMigrate = true
	if err := MaybeRunDev(context.Background(), cfg, nil, nil); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestMaybeRunDevRequiresClient(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "dev"
	cfg.FeatureFlags.AutoMigrate = true
	cfg.DB.Driver = config.DBDriverPostgres
	if err := MaybeRunDev(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected error without a database client")
	}
}
