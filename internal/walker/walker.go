// Package walker drives a discovery filter over a directory tree.
package walker

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"github.com/taigrr/extdiscovery/internal/discoveryfilter"
	"github.com/taigrr/extdiscovery/internal/types"
	"golang.org/x/time/rate"
)

// Options tunes a walk. The zero value walks unthrottled and silently.
type Options struct {
	// MaxEntriesPerSecond throttles entry visits; 0 means unlimited.
	MaxEntriesPerSecond int
	// Verbose logs pruned directories and unreadable entries.
	Verbose bool
}

// Match is a file accepted by the filter.
type Match struct {
	RelPath string // slash-separated, relative to the walk root
	AbsPath string
}

// Filter decides which entries a walk descends into or reports.
// *discoveryfilter.Filter implements it.
type Filter interface {
	Accept(discoveryfilter.Entry) bool
}

// ErrNotDirectory is returned when the walk root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Walk visits root depth-first, parents before children, consulting f for
// every entry below root. Rejected directories are not descended into and
// rejected files are not reported; every accepted file is passed to fn.
// A symlinked root is resolved first; symlinks below it are not followed.
// Unreadable subdirectories are counted and skipped; an unreadable root is
// returned as an error.
func Walk(ctx context.Context, root string, f Filter, opts *Options, fn func(Match) error) (types.ScanStats, error) {
	var stats types.ScanStats
	if opts == nil {
		opts = &Options{}
	}

	var limiter *rate.Limiter
	if opts.MaxEntriesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.MaxEntriesPerSecond), 1)
	}

	root = filepath.Clean(root)
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			stats.Errors++
			if opts.Verbose {
				log.Printf("[walk] skipped (unreadable): %s: %v", path, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == root {
			if !d.IsDir() {
				return &fs.PathError{Op: "walk", Path: root, Err: ErrNotDirectory}
			}
			return nil
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entry := dirEntry{DirEntry: d, rel: filepath.ToSlash(rel)}
		stats.Visited++

		if !f.Accept(entry) {
			if d.IsDir() {
				stats.PrunedDirs++
				if opts.Verbose {
					log.Printf("[walk] pruned: %s", entry.rel)
				}
				return filepath.SkipDir
			}
			stats.RejectedFiles++
			return nil
		}
		if d.IsDir() {
			return nil
		}

		stats.Manifests++
		return fn(Match{RelPath: entry.rel, AbsPath: path})
	})

	return stats, err
}

// dirEntry adapts fs.DirEntry to discoveryfilter.Entry.
type dirEntry struct {
	fs.DirEntry
	rel string
}

func (e dirEntry) RelPath() string { return e.rel }

func (e dirEntry) Depth() int { return strings.Count(e.rel, "/") }
