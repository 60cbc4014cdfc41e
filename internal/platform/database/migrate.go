package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrations embed.FS

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`

// Migrate applies the embedded migrations for db's dialect that have not
// been recorded in schema_migrations yet. Each file runs in its own
// transaction.
func Migrate(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, migrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	dir := path.Join("migrations", string(db.Dialect))
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return fmt.Errorf("read migrations for %s: %w", db.Dialect, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		if err := apply(ctx, db, dir, entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

func apply(ctx context.Context, db *DB, dir, name string) error {
	version := strings.TrimSuffix(name, ".sql")

	var applied int
	err := db.QueryRowContext(ctx,
		db.Dialect.Rebind("SELECT COUNT(*) FROM schema_migrations WHERE version = ?"), version,
	).Scan(&applied)
	if err != nil {
		return fmt.Errorf("check migration %s: %w", version, err)
	}
	if applied > 0 {
		return nil
	}

	content, err := migrations.ReadFile(path.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}

	log.Info().Str("migration", version).Str("dialect", string(db.Dialect)).Msg("applying migration")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements(string(content)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %s: %w", version, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		db.Dialect.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"),
		version, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}

	return tx.Commit()
}

// statements splits a migration file on semicolons. Migration files must
// not contain semicolons inside literals.
func statements(content string) []string {
	var out []string
	for _, stmt := range strings.Split(content, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
