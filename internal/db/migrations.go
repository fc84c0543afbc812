package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS items (
			id              TEXT PRIMARY KEY,
			kind            TEXT NOT NULL CHECK(kind IN ('event', 'med')),
			title           TEXT NOT NULL,
			item_date       DATE NOT NULL,
			item_time       TEXT,
			description     TEXT NOT NULL DEFAULT '',
			dose            TEXT NOT NULL DEFAULT '',
			frequency       INTEGER NOT NULL DEFAULT 0,
			frequency_unit  TEXT CHECK(frequency_unit IN ('DAILY', 'WEEKLY', 'MONTHLY', 'QUARTERLY', 'YEARLY', 'UNIQUE')),
			created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_items_date ON items(item_date);

		CREATE TABLE IF NOT EXISTS kv (
			key         TEXT PRIMARY KEY,
			value       TEXT NOT NULL,
			updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
