// Package history keeps a SQLite log of scenario runs and their outcomes.
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	scenario   TEXT    NOT NULL DEFAULT '',
	started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	duration   INTEGER NOT NULL DEFAULT 0,
	mode       TEXT    NOT NULL DEFAULT 'plain',
	steps      TEXT    NOT NULL DEFAULT '',
	exit_code  INTEGER NOT NULL DEFAULT 0,
	timed_out  INTEGER NOT NULL DEFAULT 0,
	fault_kind TEXT    NOT NULL DEFAULT '',
	record_id  TEXT    NOT NULL DEFAULT '',
	step       TEXT    NOT NULL DEFAULT '',
	action     TEXT    NOT NULL DEFAULT '',
	element    TEXT    NOT NULL DEFAULT '',
	summary    TEXT    NOT NULL DEFAULT '',
	stderr     TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario, started_at);
`

// DB wraps a sql.DB with run history operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the history database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
