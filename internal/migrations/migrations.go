package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

//go:embed sql/*.sql
var files embed.FS

const historyDDL = `CREATE TABLE IF NOT EXISTS migrations_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// Migration is one embedded file and, once run, when it was applied.
type Migration struct {
	Name      string
	AppliedAt *time.Time
}

func (m Migration) Applied() bool { return m.AppliedAt != nil }

// Apply runs every pending migration in filename order, each in its own
// transaction, and returns the names it ran.
func Apply(ctx context.Context, db *sqlx.DB) ([]string, error) {
	all, err := Status(ctx, db)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, m := range all {
		if m.Applied() {
			continue
		}
		if err := run(ctx, db, m.Name); err != nil {
			return ran, err
		}
		ran = append(ran, m.Name)
	}
	return ran, nil
}

// Status lists every embedded migration with its applied time, if any.
func Status(ctx context.Context, db *sqlx.DB) ([]Migration, error) {
	if _, err := db.ExecContext(ctx, historyDDL); err != nil {
		return nil, fmt.Errorf("failed to create migrations history: %w", err)
	}

	var rows []struct {
		Name      string    `db:"name"`
		AppliedAt time.Time `db:"applied_at"`
	}
	if err := db.SelectContext(ctx, &rows, "SELECT name, applied_at FROM migrations_history"); err != nil {
		return nil, fmt.Errorf("failed to read migrations history: %w", err)
	}
	applied := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		applied[r.Name] = r.AppliedAt
	}

	names, err := embedded()
	if err != nil {
		return nil, err
	}
	out := make([]Migration, 0, len(names))
	for _, name := range names {
		m := Migration{Name: name}
		if at, ok := applied[name]; ok {
			m.AppliedAt = &at
		}
		out = append(out, m)
	}
	return out, nil
}

func embedded() ([]string, error) {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func run(ctx context.Context, db *sqlx.DB, name string) error {
	content, err := fs.ReadFile(files, path.Join("sql", name))
	if err != nil {
		return fmt.Errorf("failed to read migration %s: %w", name, err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	for stmt := range strings.SplitSeq(string(content), ";") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO migrations_history (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", name, err)
	}
	return nil
}
