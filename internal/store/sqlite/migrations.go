package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one versioned schema change. Applied versions are tracked in
// SQLite's user_version pragma.
type Migration struct {
	Version int
	Name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []Migration{
	{Version: 1, Name: "create_transactions", apply: execSQL(`
		CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			amount REAL NOT NULL,
			currency TEXT DEFAULT 'EUR',
			category TEXT,
			description TEXT,
			type TEXT DEFAULT 'expense',
			date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			raw_text TEXT
		)`)},
	// Files written by the first release of the bot have no type column.
	{Version: 2, Name: "add_type_column", apply: addColumnIfMissing("type", "TEXT DEFAULT 'expense'")},
	{Version: 3, Name: "index_user_id", apply: execSQL(
		`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id)`)},
}

// LatestVersion is the schema version Migrate brings a database to.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// SchemaVersion reports the version recorded in the database file.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("SchemaVersion: %w", err)
	}
	return v, nil
}

// Migrate applies every pending migration, each in its own transaction, and
// returns the ones it ran.
func (s *Store) Migrate(ctx context.Context) ([]Migration, error) {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("Migrate: %w", err)
	}

	var applied []Migration
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return applied, fmt.Errorf("Migrate: %04d_%s: %w", m.Version, m.Name, err)
		}
		applied = append(applied, m)
	}
	return applied, nil
}

func (s *Store) applyMigration(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := m.apply(ctx, tx); err != nil {
		return err
	}
	// PRAGMA does not take bind parameters; Version is a compile-time int.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return tx.Commit()
}

func execSQL(stmt string) func(context.Context, *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, stmt)
		return err
	}
}

func addColumnIfMissing(column, definition string) func(context.Context, *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		exists, err := hasColumn(ctx, tx, transactionsTable, column)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		_, err = tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", transactionsTable, column, definition))
		return err
	}
}

func hasColumn(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table_info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("table_info scan: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
