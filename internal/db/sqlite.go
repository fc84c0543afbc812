// Package db provides SQLite storage for agenda items and session keys.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cuida-app/cuida/internal/item"
)

// SQLite implements item.Repository and a small key-value store using SQLite.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

const selectColumns = `
	SELECT id, kind, title, item_date, item_time, description, dose,
	       frequency, frequency_unit, created_at
	FROM items
`

const upsertQuery = `
	INSERT INTO items (
		id, kind, title, item_date, item_time, description, dose,
		frequency, frequency_unit, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		kind = excluded.kind,
		title = excluded.title,
		item_date = excluded.item_date,
		item_time = excluded.item_time,
		description = excluded.description,
		dose = excluded.dose,
		frequency = excluded.frequency,
		frequency_unit = excluded.frequency_unit
`

// execer is satisfied by *sql.DB, *sql.Tx and *sql.Stmt owners alike.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UpsertItem inserts the item or replaces the stored record with the same ID.
// The original creation time is kept on replace.
func (s *SQLite) UpsertItem(ctx context.Context, it *item.Item) error {
	return upsert(ctx, s.db, it)
}

func upsert(ctx context.Context, ex execer, it *item.Item) error {
	if it.ID == "" {
		it.ID = item.NewID()
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now()
	}

	var (
		itemTime sql.NullString
		unit     sql.NullString
		freq     int
	)
	if it.Time != "" {
		itemTime = sql.NullString{String: it.Time, Valid: true}
	}
	if it.Recurrence != nil {
		unit = sql.NullString{String: string(it.Recurrence.Unit), Valid: it.Recurrence.Unit != ""}
		freq = it.Recurrence.Frequency
	}

	_, err := ex.ExecContext(ctx, upsertQuery,
		it.ID,
		it.Kind,
		it.Title,
		it.Date,
		itemTime,
		it.Description,
		it.Dose,
		freq,
		unit,
		it.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting item: %w", err)
	}
	return nil
}

// UpsertItems stores several items in one transaction.
func (s *SQLite) UpsertItems(ctx context.Context, items []item.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range items {
		if err := upsert(ctx, tx, &items[i]); err != nil {
			return fmt.Errorf("item %q: %w", items[i].Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetItem retrieves an item by ID.
func (s *SQLite) GetItem(ctx context.Context, id string) (*item.Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, item.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying item: %w", err)
	}
	return it, nil
}

// DeleteItem removes an item by ID.
func (s *SQLite) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", item.ErrItemNotFound, id)
	}
	return nil
}

// ListItems returns every stored item.
func (s *SQLite) ListItems(ctx context.Context) ([]item.Item, error) {
	return s.query(ctx, selectColumns+` ORDER BY item_date, COALESCE(item_time, '00:00'), title`)
}

// ListItemsByDateRange returns items dated within [start, end] plus repeating
// items that started on or before end.
func (s *SQLite) ListItemsByDateRange(ctx context.Context, start, end string) ([]item.Item, error) {
	query := selectColumns + `
		WHERE (item_date >= ? AND item_date <= ?)
		   OR (frequency > 0 AND frequency_unit IS NOT NULL AND frequency_unit != 'UNIQUE' AND item_date <= ?)
		ORDER BY item_date, COALESCE(item_time, '00:00'), title
	`
	return s.query(ctx, query, start, end, end)
}

func (s *SQLite) query(ctx context.Context, query string, args ...any) ([]item.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (*item.Item, error) {
	var (
		it        item.Item
		itemTime  sql.NullString
		unit      sql.NullString
		freq      int
		createdAt sql.NullString
	)

	if err := sc.Scan(
		&it.ID,
		&it.Kind,
		&it.Title,
		&it.Date,
		&itemTime,
		&it.Description,
		&it.Dose,
		&freq,
		&unit,
		&createdAt,
	); err != nil {
		return nil, err
	}

	it.Date = normalizeDate(it.Date)
	if itemTime.Valid {
		it.Time = itemTime.String
	}
	if unit.Valid {
		it.Recurrence = &item.Recurrence{Frequency: freq, Unit: item.FrequencyUnit(unit.String)}
	}
	if createdAt.Valid {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			it.CreatedAt = t
		}
	}
	return &it, nil
}

// normalizeDate trims a time suffix the driver may add to DATE columns.
func normalizeDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
