// Package discoveryfilter decides which entries of a recursive directory walk
// may contain extensions.
//
// The rules are evaluated in a fixed order and the first match decides:
//
//  1. hidden entries (name starts with ".") are rejected;
//  2. directories directly below the scan root are accepted only when their
//     name is an allowed top-level name;
//  3. directories named "config" are accepted only when their path ends in
//     "modules/config";
//  4. other directories are accepted unless their name is skipped;
//  5. files are accepted when their name ends with the manifest suffix.
package discoveryfilter

import (
	"slices"
	"strings"

	"github.com/taigrr/extdiscovery/internal/types"
)

const (
	// DefaultManifestSuffix marks a file as an extension manifest.
	DefaultManifestSuffix = ".info.yml"

	testsDirName  = "tests"
	configDirName = "config"
	configSuffix  = "modules/config"
)

// DefaultAllowedTopLevelNames returns the directory names scanned at the root
// of a search path.
func DefaultAllowedTopLevelNames() []string {
	return []string{"profiles", "modules", "themes"}
}

// DefaultSkippedNames returns the directory names never descended into.
func DefaultSkippedNames() []string {
	return []string{
		// Object-oriented code.
		"src",
		"lib",
		"vendor",
		// Front-end.
		"assets",
		"css",
		"files",
		"images",
		"js",
		"misc",
		"templates",
		// Legacy.
		"includes",
		// Test fixtures.
		"fixtures",
		"Drupal",
	}
}

// Entry is a single filesystem entry visited by a walker.
type Entry interface {
	// Name is the base name of the entry.
	Name() string
	// IsDir reports whether the entry is a directory.
	IsDir() bool
	// RelPath is the slash-separated path relative to the scan root.
	RelPath() string
	// Depth is the number of directories between the scan root and the
	// entry; an immediate child of the root has depth 0.
	Depth() int
}

// Filter decides which walk entries to descend into or report.
// A Filter is immutable and safe for concurrent use.
type Filter struct {
	allowedTopLevel map[string]struct{}
	skipped         map[string]struct{}
	manifestSuffix  string
	config          types.FilterConfig
}

// New creates a Filter with the default rules plus extraSkipped directory
// names. Unless includeTests is set, "tests" directories are skipped too.
func New(extraSkipped []string, includeTests bool) *Filter {
	return NewWithConfig(&types.FilterConfig{
		ExtraSkippedNames:      extraSkipped,
		IncludeTestDirectories: includeTests,
	})
}

// NewWithConfig creates a Filter from config. A nil config yields the defaults.
func NewWithConfig(config *types.FilterConfig) *Filter {
	var cfg types.FilterConfig
	if config != nil {
		cfg = *config
	}

	allowed := cfg.AllowedTopLevelNames
	if len(allowed) == 0 {
		allowed = DefaultAllowedTopLevelNames()
	}
	skipped := cfg.SkippedNames
	if len(skipped) == 0 {
		skipped = DefaultSkippedNames()
	}
	suffix := cfg.ManifestSuffix
	if suffix == "" {
		suffix = DefaultManifestSuffix
	}

	f := &Filter{
		allowedTopLevel: make(map[string]struct{}, len(allowed)),
		skipped:         make(map[string]struct{}, len(skipped)+len(cfg.ExtraSkippedNames)+1),
		manifestSuffix:  suffix,
	}
	for _, name := range allowed {
		f.allowedTopLevel[name] = struct{}{}
	}
	for _, name := range skipped {
		f.skipped[name] = struct{}{}
	}
	for _, name := range cfg.ExtraSkippedNames {
		f.skipped[name] = struct{}{}
	}
	if !cfg.IncludeTestDirectories {
		f.skipped[testsDirName] = struct{}{}
	}

	f.config = types.FilterConfig{
		AllowedTopLevelNames:   slices.Clone(allowed),
		SkippedNames:           slices.Clone(skipped),
		ExtraSkippedNames:      slices.Clone(cfg.ExtraSkippedNames),
		IncludeTestDirectories: cfg.IncludeTestDirectories,
		ManifestSuffix:         suffix,
	}

	return f
}

// Accept reports whether e should be descended into (directories) or
// reported (files).
func (f *Filter) Accept(e Entry) bool {
	ok, _ := f.Decide(e)
	return ok
}

// Decide is Accept, also returning the rule that made the decision.
func (f *Filter) Decide(e Entry) (bool, Rule) {
	name := e.Name()

	// Walkers skip "." and ".." but not hidden entries such as ".git".
	if strings.HasPrefix(name, ".") {
		return false, RuleHidden
	}

	if e.IsDir() {
		// The root of a search path can hold anything; only the extension
		// category directories are worth entering from there.
		if e.Depth() == 0 {
			_, ok := f.allowedTopLevel[name]
			return ok, RuleTopLevel
		}

		// Every extension ships a config directory, but the core config
		// module itself lives at modules/config and may be overridden.
		if name == configDirName {
			return strings.HasSuffix(normalize(e.RelPath()), configSuffix), RuleConfig
		}

		_, skip := f.skipped[name]
		return !skip, RuleSkipList
	}

	return strings.HasSuffix(name, f.manifestSuffix), RuleManifest
}

// AcceptPath is Accept for a slash-separated path relative to the scan root.
func (f *Filter) AcceptPath(relPath string, isDir bool) bool {
	return f.Accept(NewPathEntry(relPath, isDir))
}

// FilterManifests returns the file paths from paths that a walk with this
// filter would report: every ancestor directory and the file itself must be
// accepted.
func (f *Filter) FilterManifests(paths []string) []string {
	var accepted []string
	for _, path := range paths {
		if f.reachable(path) {
			accepted = append(accepted, path)
		}
	}
	return accepted
}

func (f *Filter) reachable(path string) bool {
	parts := strings.Split(strings.Trim(normalize(path), "/"), "/")
	for i := 1; i < len(parts); i++ {
		if !f.Accept(NewPathEntry(strings.Join(parts[:i], "/"), true)) {
			return false
		}
	}
	return f.Accept(NewPathEntry(strings.Join(parts, "/"), false))
}

// ManifestSuffix returns the suffix identifying manifest files.
func (f *Filter) ManifestSuffix() string {
	return f.manifestSuffix
}

// Config returns a copy of the effective configuration.
func (f *Filter) Config() types.FilterConfig {
	c := f.config
	c.AllowedTopLevelNames = slices.Clone(c.AllowedTopLevelNames)
	c.SkippedNames = slices.Clone(c.SkippedNames)
	c.ExtraSkippedNames = slices.Clone(c.ExtraSkippedNames)
	return c
}

func normalize(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
