// Package migrations embeds the schema and applies it with sql-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed sql/*.sql
var files embed.FS

const dialect = "postgres"

func init() {
	migrate.SetTable("schema_migrations")
}

// Source returns the embedded migration source.
func Source() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{FileSystem: files, Root: "sql"}
}

// Up applies all pending migrations and returns how many ran.
func Up(db *sql.DB) (int, error) {
	n, err := migrate.Exec(db, dialect, Source(), migrate.Up)
	if err != nil {
		return n, fmt.Errorf("apply migrations: %w", err)
	}
	return n, nil
}

// Down rolls back at most steps migrations (0 means all).
func Down(db *sql.DB, steps int) (int, error) {
	n, err := migrate.ExecMax(db, dialect, Source(), migrate.Down, steps)
	if err != nil {
		return n, fmt.Errorf("roll back migrations: %w", err)
	}
	return n, nil
}

// Status describes one embedded migration.
type Status struct {
	ID      string
	Applied bool
}

// List reports every embedded migration and whether it has been applied.
func List(db *sql.DB) ([]Status, error) {
	all, err := Source().FindMigrations()
	if err != nil {
		return nil, fmt.Errorf("find migrations: %w", err)
	}
	records, err := migrate.GetMigrationRecords(db, dialect)
	if err != nil {
		return nil, fmt.Errorf("read migration records: %w", err)
	}
	applied := make(map[string]bool, len(records))
	for _, r := range records {
		applied[r.Id] = true
	}
	out := make([]Status, 0, len(all))
	for _, m := range all {
		out = append(out, Status{ID: m.Id, Applied: applied[m.Id]})
	}
	return out, nil
}
