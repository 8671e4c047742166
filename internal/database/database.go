package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	// _txlock=immediate makes transactions take the write lock up front, so
	// concurrent writers queue on busy_timeout instead of deadlocking on a
	// deferred SHARED->RESERVED upgrade (which returns SQLITE_BUSY at once).
	db, err := sql.Open("sqlite", dataSourceName+"?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		tokens INTEGER NOT NULL DEFAULT 0 CHECK (tokens >= 0),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS locations (
		id TEXT NOT NULL PRIMARY KEY,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		is_available INTEGER NOT NULL DEFAULT 1,
		offered_by TEXT NOT NULL REFERENCES users(id),
		claimed_by TEXT REFERENCES users(id),
		tokens_offered INTEGER NOT NULL DEFAULT 0 CHECK (tokens_offered >= 0),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		-- a claimed spot always records who claimed it
		CHECK (is_available = 1 OR claimed_by IS NOT NULL)
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		user_id TEXT,
		location_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_locations_available ON locations(is_available);
	CREATE INDEX IF NOT EXISTS idx_locations_created_at ON locations(created_at);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
