// Package sqlite reads and writes init-state databases.
//
// An init-state database describes the hubs and logins the emulator should
// hold right after startup. It is read once, at boot; requests never touch
// it. The schema keeps one row per hub and one row per (hub, login):
//
//	github(id, name UNIQUE, url)
//	users(id, login, github → github.id, UNIQUE(login, github))
//
// modernc.org/sqlite is a pure Go driver, so seed files can be produced and
// consumed without a C toolchain. Use ":memory:" in tests.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool holding an init-state database.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ":memory:" databases exist per connection; pin the pool to a single
	// connection so every query sees the same schema.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS makes it safe to run
// against a seed file produced by an earlier version.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS github (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			url  TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return fmt.Errorf("creating github table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			login  TEXT NOT NULL,
			github INTEGER NOT NULL REFERENCES github(id),
			UNIQUE (login, github)
		);
		CREATE INDEX IF NOT EXISTS idx_users_github ON users(github);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}
