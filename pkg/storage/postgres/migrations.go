package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migration is one versioned schema change.
type migration struct {
	version int
	file    string
	sql     string
}

// loadMigrations reads "NNN_description.sql" files from dir, ordered by
// version. Files not following the naming scheme are skipped.
func loadMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	var out []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		content, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		out = append(out, migration{version: version, file: entry.Name(), sql: string(content)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// migrate applies pending migrations, each in its own transaction together
// with its schema_migrations record.
func (s *Store) migrate(ctx context.Context) error {
	migrations, err := loadMigrations(migrationFiles, "migrations")
	if err != nil {
		return err
	}

	for _, m := range migrations {
		var applied bool
		err := s.pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version,
		).Scan(&applied)
		// Fails before the first migration has created the table.
		if err == nil && applied {
			continue
		}

		slog.Info("applying migration", "store", Name, "file", m.file, "version", m.version)

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("starting migration %s: %w", m.file, err)
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("applying migration %s: %w", m.file, err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING", m.version,
		); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("recording migration %s: %w", m.file, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("committing migration %s: %w", m.file, err)
		}
	}
	return nil
}
