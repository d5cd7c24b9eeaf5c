package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/taigrr/extdiscovery/internal/config"
	"github.com/taigrr/extdiscovery/internal/discovery"
	"github.com/taigrr/extdiscovery/internal/discoveryfilter"
	"github.com/taigrr/extdiscovery/internal/walker"
)

// flags holds the persistent flags shared by every subcommand.
var flags struct {
	configPath   string
	includeTests bool
	skip         []string
	verbose      bool
}

// settings is the resolved configuration for one command invocation.
type settings struct {
	cfg         *config.Config
	service     *discovery.Service
	searchPaths []string
}

// loadSettings merges the config file with command-line flags. Positional
// args replace the configured search paths; with neither, the current
// directory is scanned.
func loadSettings(cmd *cobra.Command, args []string) (*settings, error) {
	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return nil, err
	}

	filterCfg := cfg.Filter
	filterCfg.ExtraSkippedNames = append(slices.Clone(filterCfg.ExtraSkippedNames), flags.skip...)
	if cmd.Flags().Changed("include-tests") {
		filterCfg.IncludeTestDirectories = flags.includeTests
	}

	if f := cmd.Flags().Lookup("rate"); f != nil && f.Changed {
		if cfg.MaxEntriesPerSecond, err = cmd.Flags().GetInt("rate"); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	searchPaths := cfg.SearchPaths
	if len(args) > 0 {
		searchPaths = args
	}
	if len(searchPaths) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		searchPaths = []string{wd}
	}

	svc := discovery.New(discoveryfilter.NewWithConfig(&filterCfg), &walker.Options{
		MaxEntriesPerSecond: cfg.MaxEntriesPerSecond,
		Verbose:             flags.verbose,
	})

	return &settings{
		cfg:         cfg,
		service:     svc,
		searchPaths: searchPaths,
	}, nil
}

