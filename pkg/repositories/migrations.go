package repositories

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// readMigrations returns the migrations of a backend in file name order.
func readMigrations(backend string) ([]string, error) {
	dir := path.Join("migrations", backend)
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	var statements []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		migrationPath := path.Join(dir, entry.Name())
		migration, err := fs.ReadFile(migrations, migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}
		statements = append(statements, string(migration))
	}

	return statements, nil
}

func migrate(ctx context.Context, backend string, exec func(ctx context.Context, statement string) error) error {
	statements, err := readMigrations(backend)
	if err != nil {
		return err
	}
	for i, statement := range statements {
		if err := exec(ctx, statement); err != nil {
			return fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}
	return nil
}
