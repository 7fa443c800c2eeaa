package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// CreateSQLMigration scaffolds <dir>/<version>_<slug>.sql. The version is the
// current UTC timestamp, bumped past the newest file already in dir so goose
// always applies the new file last.
func CreateSQLMigration(dir, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	slug := migrationSlug(name)
	if slug == "" {
		return "", fmt.Errorf("name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	latest, err := scanExisting(dir, slug)
	if err != nil {
		return "", err
	}
	version := now.Truncate(time.Second)
	if !version.After(latest) {
		version = latest.Add(time.Second)
	}

	path := filepath.Join(dir, version.Format(versionLayout)+"_"+slug+".sql")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	_, werr := fmt.Fprintf(f, migrationTemplate, slug, slug)
	if err := errors.Join(werr, f.Close()); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

func migrationSlug(name string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// scanExisting returns the newest version in dir and rejects a second
// migration with the same slug.
func scanExisting(dir, slug string) (time.Time, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, fmt.Errorf("read %q: %w", dir, err)
	}
	var latest time.Time
	for _, entry := range entries {
		m := sqlFileRe.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}
		if strings.TrimSuffix(entry.Name()[len(m[1])+1:], ".sql") == slug {
			return time.Time{}, fmt.Errorf("migration %q already exists as %s", slug, entry.Name())
		}
		v, err := time.Parse(versionLayout, m[1])
		if err != nil {
			continue
		}
		if v.After(latest) {
			latest = v
		}
	}
	return latest, nil
}

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %s: volumes are numeric(18,4), statuses are varchar with a CHECK
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`
