// Package sqlite is the local record store: one append-only transactions
// table in a SQLite file, plus the per-user aggregates the bot reports.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/dvloznov/finance-bot/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

const transactionsTable = "transactions"

// Store persists TransactionRecords. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the SQLite file at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	s, err := OpenRaw(path)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	if err := s.Init(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// OpenRaw opens the file without touching the schema.
func OpenRaw(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("OpenRaw: opening %s: %w", path, err)
	}
	// SQLite has a single writer; one connection keeps writers from
	// tripping over each other's locks.
	db.SetMaxOpenConns(1)

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Init idempotently brings the schema up to date. It is cheap once the
// database is current.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("Init: %w", err)
	}
	return nil
}

// Add inserts one record and returns its id.
func (s *Store) Add(ctx context.Context, rec domain.NewRecord) (int64, error) {
	txType := rec.Type
	if txType == "" {
		txType = domain.TxTypeExpense
	}

	query, args, err := squirrel.Insert(transactionsTable).
		Columns("user_id", "amount", "currency", "category", "description", "type", "date", "raw_text").
		Values(rec.UserID, rec.Amount, domain.DefaultCurrency, rec.Category, rec.Description, string(txType), s.now().UTC(), rec.RawText).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("Add: building insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("Add: inserting row: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("Add: reading id: %w", err)
	}
	return id, nil
}

// Stats returns the user's total and per-category totals, largest first.
func (s *Store) Stats(ctx context.Context, userID string) (domain.UserStats, error) {
	stats := domain.UserStats{Categories: []domain.CategoryTotal{}}

	totalQuery, args, err := squirrel.Select("COALESCE(SUM(amount), 0)").
		From(transactionsTable).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("Stats: building total query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, totalQuery, args...).Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("Stats: reading total: %w", err)
	}

	catQuery, args, err := squirrel.Select("COALESCE(category, '')", "SUM(amount) AS total").
		From(transactionsTable).
		Where(squirrel.Eq{"user_id": userID}).
		GroupBy("category").
		OrderBy("total DESC").
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("Stats: building category query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, catQuery, args...)
	if err != nil {
		return stats, fmt.Errorf("Stats: querying categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ct domain.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return stats, fmt.Errorf("Stats: scanning category: %w", err)
		}
		stats.Categories = append(stats.Categories, ct)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("Stats: iterating categories: %w", err)
	}

	return stats, nil
}

// ListAll returns every record in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]domain.TransactionRecord, error) {
	query, args, err := squirrel.Select(
		"id", "user_id", "amount", "COALESCE(currency, 'EUR')", "COALESCE(category, '')",
		"COALESCE(description, '')", "COALESCE(type, 'expense')", "date", "COALESCE(raw_text, '')",
	).
		From(transactionsTable).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ListAll: building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListAll: query: %w", err)
	}
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		var (
			r      domain.TransactionRecord
			txType string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Amount, &r.Currency, &r.Category,
			&r.Description, &txType, &r.Date, &r.RawText); err != nil {
			return nil, fmt.Errorf("ListAll: scan: %w", err)
		}
		r.Type = domain.ParseTxType(txType)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAll: iterate: %w", err)
	}

	return records, nil
}
