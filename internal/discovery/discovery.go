// Package discovery finds extensions across an ordered list of search paths.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/taigrr/extdiscovery/internal/discoveryfilter"
	"github.com/taigrr/extdiscovery/internal/types"
	"github.com/taigrr/extdiscovery/internal/walker"
)

// ErrNoSearchPaths is returned by Scan when called without search paths.
var ErrNoSearchPaths = errors.New("no search paths given")

// Service discovers extensions below a set of search paths.
type Service struct {
	filter     *discoveryfilter.Filter
	walkOpts   *walker.Options
	categories map[string]struct{}
}

// New creates a discovery Service. A nil filter uses the default rules.
func New(f *discoveryfilter.Filter, opts *walker.Options) *Service {
	if f == nil {
		f = discoveryfilter.New(nil, false)
	}
	if opts == nil {
		opts = &walker.Options{}
	}
	categories := make(map[string]struct{})
	for _, name := range f.Config().AllowedTopLevelNames {
		categories[name] = struct{}{}
	}
	return &Service{
		filter:     f,
		walkOpts:   opts,
		categories: categories,
	}
}

// Filter returns the filter used by the service.
func (s *Service) Filter() *discoveryfilter.Filter {
	return s.filter
}

// WithFilter returns a Service that shares s's walk options but uses f.
func (s *Service) WithFilter(f *discoveryfilter.Filter) *Service {
	return New(f, s.walkOpts)
}

// Scan walks every search path and returns the discovered extensions.
// Search paths are walked concurrently but merged in order: an extension
// found in a later search path overrides a same-named one from an earlier
// path. Within one search path the shallowest manifest wins. Search paths
// that do not exist are skipped.
func (s *Service) Scan(ctx context.Context, searchPaths []string) (types.ScanResult, error) {
	if len(searchPaths) == 0 {
		return types.ScanResult{}, ErrNoSearchPaths
	}

	type job struct {
		idx  int
		path string
	}
	type pathResult struct {
		idx        int
		extensions []types.Extension
		stats      types.ScanStats
		err        error
	}

	numWorkers := max(min(runtime.NumCPU(), len(searchPaths)), 1)
	jobs := make(chan job, len(searchPaths))
	resultsCh := make(chan pathResult, len(searchPaths))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for j := range jobs {
				exts, stats, err := s.scanPath(ctx, j.path)
				resultsCh <- pathResult{idx: j.idx, extensions: exts, stats: stats, err: err}
			}
		})
	}

	for i, p := range searchPaths {
		jobs <- job{idx: i, path: p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	ordered := make([]pathResult, len(searchPaths))
	for r := range resultsCh {
		ordered[r.idx] = r
	}

	var result types.ScanResult
	byName := make(map[string]types.Extension)
	for _, r := range ordered {
		if r.err != nil {
			return types.ScanResult{}, r.err
		}
		result.Stats = addStats(result.Stats, r.stats)
		for _, ext := range r.extensions {
			if prev, ok := byName[ext.Name]; ok {
				result.Overridden = append(result.Overridden, prev)
			}
			byName[ext.Name] = ext
		}
	}

	result.Extensions = make([]types.Extension, 0, len(byName))
	for _, ext := range byName {
		result.Extensions = append(result.Extensions, ext)
	}
	sort.Slice(result.Extensions, func(i, j int) bool {
		return result.Extensions[i].Name < result.Extensions[j].Name
	})
	sort.SliceStable(result.Overridden, func(i, j int) bool {
		return result.Overridden[i].Name < result.Overridden[j].Name
	})

	return result, nil
}

// scanPath walks a single search path. Within the path, duplicate names
// resolve to the shallowest manifest; the others are dropped.
func (s *Service) scanPath(ctx context.Context, searchPath string) ([]types.Extension, types.ScanStats, error) {
	absPath, err := filepath.Abs(searchPath)
	if err != nil {
		return nil, types.ScanStats{}, &ScanError{Path: searchPath, Err: err}
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if s.walkOpts.Verbose {
				log.Printf("[scan] search path does not exist, skipping: %s", absPath)
			}
			return nil, types.ScanStats{}, nil
		}
		return nil, types.ScanStats{}, &ScanError{Path: searchPath, Err: err}
	}
	if !info.IsDir() {
		return nil, types.ScanStats{}, &ScanError{Path: searchPath, Err: walker.ErrNotDirectory}
	}

	var found []types.Extension
	stats, err := walker.Walk(ctx, absPath, s.filter, s.walkOpts, func(m walker.Match) error {
		found = append(found, s.extensionFor(absPath, m.RelPath))
		return nil
	})
	if err != nil {
		return nil, stats, &ScanError{Path: searchPath, Err: err}
	}

	sort.SliceStable(found, func(i, j int) bool {
		di, dj := strings.Count(found[i].Manifest, "/"), strings.Count(found[j].Manifest, "/")
		if di != dj {
			return di < dj
		}
		return found[i].Manifest < found[j].Manifest
	})

	seen := make(map[string]bool, len(found))
	unique := found[:0]
	for _, ext := range found {
		if seen[ext.Name] {
			if s.walkOpts.Verbose {
				log.Printf("[scan] duplicate %s ignored: %s", ext.Name, ext.Manifest)
			}
			continue
		}
		seen[ext.Name] = true
		unique = append(unique, ext)
	}

	if s.walkOpts.Verbose {
		log.Printf("[scan] %s: %d extensions, %d entries visited, %d directories pruned",
			absPath, len(unique), stats.Visited, stats.PrunedDirs)
	}

	return unique, stats, nil
}

func (s *Service) extensionFor(searchPath, manifest string) types.Extension {
	name := strings.TrimSuffix(path.Base(manifest), s.filter.ManifestSuffix())
	dir := path.Dir(manifest)
	return types.Extension{
		Name:       name,
		Type:       s.typeFor(dir),
		Path:       dir,
		Manifest:   manifest,
		SearchPath: searchPath,
	}
}

// typeFor derives the extension type from the nearest category directory
// above dir, e.g. "profiles/standard/modules/foo" is a module.
func (s *Service) typeFor(dir string) string {
	parts := strings.Split(dir, "/")
	for i := len(parts) - 2; i >= 0; i-- {
		if _, ok := s.categories[parts[i]]; ok {
			return strings.TrimSuffix(parts[i], "s")
		}
	}
	return ""
}

func addStats(a, b types.ScanStats) types.ScanStats {
	return types.ScanStats{
		Visited:       a.Visited + b.Visited,
		PrunedDirs:    a.PrunedDirs + b.PrunedDirs,
		RejectedFiles: a.RejectedFiles + b.RejectedFiles,
		Manifests:     a.Manifests + b.Manifests,
		Errors:        a.Errors + b.Errors,
	}
}

// ScanError reports a failure to scan one search path.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
