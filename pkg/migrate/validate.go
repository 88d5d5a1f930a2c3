package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// ValidateDir runs ValidateFS against a directory on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateEmbedded checks the migrations compiled into the binary.
func ValidateEmbedded() error {
	return ValidateFS(embedded, embeddedDir)
}

// ValidateFS checks every .sql file under dir: the filename pattern, unique
// versions and names, and goose Up/Down annotations in that order.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	byVersion := map[string]string{}
	byName := map[string]string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		file := e.Name()
		m := fileNameRe.FindStringSubmatch(file)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", file)
		}
		version, name := m[1], m[2]
		if prev, ok := byVersion[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, file)
		}
		if prev, ok := byName[name]; ok {
			return fmt.Errorf("migration name %q used by %q and %q", name, prev, file)
		}
		byVersion[version], byName[name] = file, file

		if err := checkAnnotations(fsys, path.Join(dir, file)); err != nil {
			return err
		}
	}

	if len(byVersion) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return nil
}

func checkAnnotations(fsys fs.FS, file string) error {
	b, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read file %q: %w", file, err)
	}
	txt := string(b)
	up := strings.Index(txt, "-- +goose Up")
	down := strings.Index(txt, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Up\"", path.Base(file))
	case down < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Down\"", path.Base(file))
	case down < up:
		return fmt.Errorf("migration %q has its Down section before Up", path.Base(file))
	}
	return nil
}
