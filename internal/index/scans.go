package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/taigrr/extdiscovery/internal/types"
)

// Scan is a recorded discovery run.
type Scan struct {
	ID          int64
	CreatedAt   time.Time
	SearchPaths []string
	Stats       types.ScanStats
}

// RecordScan stores result as a new scan and returns its id. The scan and
// its extensions are written in one transaction.
func RecordScan(ctx context.Context, db *sql.DB, searchPaths []string, result types.ScanResult) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := time.Now().UTC().Format(time.RFC3339)
	s := result.Stats
	res, err := tx.ExecContext(ctx,
		`INSERT INTO scans (created_at, search_paths, visited, pruned_dirs, rejected_files, manifests, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		createdAt, strings.Join(searchPaths, "\n"), s.Visited, s.PrunedDirs, s.RejectedFiles, s.Manifests, s.Errors)
	if err != nil {
		return 0, fmt.Errorf("insert scan: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO extensions (scan_id, name, type, path, manifest, search_path, overridden)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	insert := func(ext types.Extension, overridden int) error {
		_, err := stmt.ExecContext(ctx, scanID, ext.Name, ext.Type, ext.Path, ext.Manifest, ext.SearchPath, overridden)
		if err != nil {
			return fmt.Errorf("insert extension %s: %w", ext.Name, err)
		}
		return nil
	}
	for _, ext := range result.Extensions {
		if err := insert(ext, 0); err != nil {
			return 0, err
		}
	}
	for _, ext := range result.Overridden {
		if err := insert(ext, 1); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return scanID, nil
}

// GetScan returns the scan with the given id, or sql.ErrNoRows if not found.
func GetScan(ctx context.Context, db *sql.DB, id int64) (*Scan, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, created_at, search_paths, visited, pruned_dirs, rejected_files, manifests, errors
		FROM scans WHERE id = ?`, id)
	return scanRow(row)
}

// LatestScan returns the most recently recorded scan, or sql.ErrNoRows if
// the index is empty.
func LatestScan(ctx context.Context, db *sql.DB) (*Scan, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, created_at, search_paths, visited, pruned_dirs, rejected_files, manifests, errors
		FROM scans ORDER BY id DESC LIMIT 1`)
	return scanRow(row)
}

func scanRow(row *sql.Row) (*Scan, error) {
	var s Scan
	var createdAt, paths string
	err := row.Scan(&s.ID, &createdAt, &paths,
		&s.Stats.Visited, &s.Stats.PrunedDirs, &s.Stats.RejectedFiles, &s.Stats.Manifests, &s.Stats.Errors)
	if err != nil {
		return nil, err
	}
	s.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan %d: bad created_at %q: %w", s.ID, createdAt, err)
	}
	if paths != "" {
		s.SearchPaths = strings.Split(paths, "\n")
	}
	return &s, nil
}

// Extensions returns the effective (not overridden) extensions recorded for
// scanID, ordered by name.
func Extensions(ctx context.Context, db *sql.DB, scanID int64) ([]types.Extension, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name, type, path, manifest, search_path FROM extensions
		WHERE scan_id = ? AND overridden = 0 ORDER BY name`, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exts []types.Extension
	for rows.Next() {
		var ext types.Extension
		if err := rows.Scan(&ext.Name, &ext.Type, &ext.Path, &ext.Manifest, &ext.SearchPath); err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, rows.Err()
}
