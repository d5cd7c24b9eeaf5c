package discoveryfilter

import "strings"

// PathEntry is an Entry described only by its relative path.
type PathEntry struct {
	path  string
	isDir bool
}

// NewPathEntry creates an Entry from a path relative to the scan root.
// Backslashes are treated as separators.
func NewPathEntry(relPath string, isDir bool) PathEntry {
	return PathEntry{
		path:  strings.Trim(normalize(relPath), "/"),
		isDir: isDir,
	}
}

func (p PathEntry) Name() string {
	if i := strings.LastIndex(p.path, "/"); i != -1 {
		return p.path[i+1:]
	}
	return p.path
}

func (p PathEntry) IsDir() bool { return p.isDir }

func (p PathEntry) RelPath() string { return p.path }

func (p PathEntry) Depth() int {
	return strings.Count(p.path, "/")
}
