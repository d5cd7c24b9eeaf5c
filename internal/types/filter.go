// Package types defines the data structures shared across extension discovery.
package types

type (
	// FilterConfig contains configuration for the discovery filter.
	// Empty AllowedTopLevelNames, SkippedNames or ManifestSuffix select the defaults.
	FilterConfig struct {
		AllowedTopLevelNames   []string `json:"allowedTopLevelNames,omitempty" yaml:"allowed_top_level_names,omitempty"`
		SkippedNames           []string `json:"skippedNames,omitempty" yaml:"skipped_names,omitempty"`
		ExtraSkippedNames      []string `json:"extraSkippedNames,omitempty" yaml:"extra_skipped_names,omitempty"`
		IncludeTestDirectories bool     `json:"includeTestDirectories,omitempty" yaml:"include_test_directories,omitempty"`
		ManifestSuffix         string   `json:"manifestSuffix,omitempty" yaml:"manifest_suffix,omitempty"`
	}
)
