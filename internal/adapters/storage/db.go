package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database. Every connection to ":memory:" sees its own
// database, so OpenMemory pins the pool to one connection.
const MemoryDSN = ":memory:"

// OpenMemory opens the in-memory SQLite database that holds loaded member lists.
// PRE: none
// POST: Returns a single-connection pool with the schema created
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", MemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := InitDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables and indexes exist
func InitDB(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS member (
		view_id TEXT NOT NULL,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		full_email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (view_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_member_view_position ON member(view_id, position);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
