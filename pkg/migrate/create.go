package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
	fileNameRe     = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
)

// CreateSQLMigration writes an empty goose migration named
// <YYYYMMDDHHMMSS>_<name>.sql into dir. The version is taken from now, or
// one second past the newest existing file so versions stay strictly
// increasing. Reusing a name is an error.
func CreateSQLMigration(dir string, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version := now.UTC().Truncate(time.Second)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", dir, err)
	}
	for _, entry := range entries {
		m := fileNameRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if m[2] == safe {
			return "", fmt.Errorf("migration named %q already exists: %s", safe, entry.Name())
		}
		existing, err := time.Parse(versionLayout, m[1])
		if err == nil && !existing.Before(version) {
			version = existing.Add(time.Second)
		}
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version.Format(versionLayout), safe))
	template := fmt.Sprintf(`-- +goose Up
-- %[1]s: keep statements portable across postgres and sqlite3.

-- +goose Down
-- %[1]s: undo the Up section.
`, safe)

	if err := os.WriteFile(fullpath, []byte(template), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}
