// Package index records discovery runs in a SQLite database.
package index

import (
	"database/sql"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// pragmas run on every new connection, so each one in the pool waits out
// concurrent writers and enforces the scan_id reference.
var pragmas = []string{
	"busy_timeout(10000)",
	"foreign_keys(1)",
}

// Open opens the SQLite index at path and checks it is reachable.
// ":memory:" is a single in-memory database shared by the whole pool.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// dsn appends the connection pragmas to path, keeping any query the
// caller already put there.
func dsn(path string) string {
	name, rawQuery, _ := strings.Cut(path, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	if name == ":memory:" {
		name = "file::memory:"
		query.Set("cache", "shared")
	}
	for _, p := range pragmas {
		query.Add("_pragma", p)
	}
	return name + "?" + query.Encode()
}

// Migrate creates the index tables if they do not exist. Safe to call on
// every startup.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		search_paths TEXT NOT NULL,
		visited INTEGER NOT NULL DEFAULT 0,
		pruned_dirs INTEGER NOT NULL DEFAULT 0,
		rejected_files INTEGER NOT NULL DEFAULT 0,
		manifests INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS extensions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id),
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		path TEXT NOT NULL,
		manifest TEXT NOT NULL,
		search_path TEXT NOT NULL,
		overridden INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		return err
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_extensions_scan_id ON extensions(scan_id, overridden, name)"); err != nil {
		return err
	}
	return nil
}
