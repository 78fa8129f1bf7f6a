// Package sqlite implements the repository interfaces on SQLite.
//
// The driver is modernc.org/sqlite — a pure-Go translation of SQLite, so the
// binary builds without CGo and cross-compiles anywhere. It registers itself
// with database/sql under the driver name "sqlite" via the blank import.
//
// All multi-row writes (template import, template creation) run inside a
// single transaction with a deferred rollback: either every row lands or
// none does. There is no shared session object — each operation acquires
// and releases its own transaction scope.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests for a throwaway database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.DB is a pool, but the PRAGMAs below are per-connection, and a
	// ":memory:" database exists per connection too. A single connection
	// keeps both consistent; SQLite serializes writers anyway.
	conn.SetMaxOpenConns(1)

	// Fail fast on a bad path or permissions rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — a web server hits
	// the database from many requests at once.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// SQLite ships with foreign keys OFF. The schema relies on
	// ON DELETE CASCADE for checklist items, so they must be on.
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

// Close closes the connection pool. Defer it wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to run
// on every startup; for anything fancier we'd reach for golang-migrate.
//
// The checklist order column is named "position" because ORDER is an SQL
// keyword; it still serializes as "order" in JSON. SQLite treats NULLs as
// distinct under a UNIQUE index, which is exactly the invariant we want:
// order is unique per parent only when it is set.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS games (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       INTEGER NOT NULL REFERENCES users(id),
			title         TEXT NOT NULL,
			platform      TEXT NOT NULL DEFAULT '',
			genre         TEXT NOT NULL DEFAULT '',
			run_type      TEXT NOT NULL DEFAULT '',
			tags          TEXT NOT NULL DEFAULT '',
			cover_url     TEXT NOT NULL DEFAULT '',
			thumbnail_url TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_games_user_id ON games(user_id);

		CREATE TABLE IF NOT EXISTS checklist_items (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id     INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			completed   INTEGER NOT NULL DEFAULT 0,
			position    INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_checklist_items_game_id
			ON checklist_items(game_id);
		CREATE UNIQUE INDEX IF NOT EXISTS uq_checklist_items_game_position
			ON checklist_items(game_id, position);

		CREATE TABLE IF NOT EXISTS community_checklists (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			created_by    INTEGER REFERENCES users(id),
			share_code    TEXT NOT NULL UNIQUE,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			platform      TEXT NOT NULL DEFAULT '',
			genre         TEXT NOT NULL DEFAULT '',
			run_type      TEXT NOT NULL DEFAULT '',
			tags          TEXT NOT NULL DEFAULT '',
			thumbnail_url TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS community_checklist_items (
			id                     INTEGER PRIMARY KEY AUTOINCREMENT,
			community_checklist_id INTEGER NOT NULL
				REFERENCES community_checklists(id) ON DELETE CASCADE,
			description            TEXT NOT NULL,
			position               INTEGER
		);
		CREATE UNIQUE INDEX IF NOT EXISTS uq_community_items_template_position
			ON community_checklist_items(community_checklist_id, position);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// isConstraint reports whether err is a SQLite constraint violation with the
// given extended result code (e.g. sqlite3.SQLITE_CONSTRAINT_UNIQUE).
//
// The driver returns *sqlite.Error for SQLite-level failures; errors.As digs
// it out of whatever wrapping database/sql added. Matching on the numeric
// code is the supported way to classify these — the message text is not
// stable across SQLite versions.
func isConstraint(err error, code int) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == code
}

// isUniqueViolation matches UNIQUE and PRIMARY KEY constraint failures.
func isUniqueViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE) ||
		isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

// isForeignKeyViolation matches FOREIGN KEY constraint failures, i.e. a
// write referencing a parent row that does not exist.
func isForeignKeyViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY)
}

// nullableInt converts a *int to the driver-level NULL representation.
func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// intPointer converts a scanned nullable column back to *int.
func intPointer(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
