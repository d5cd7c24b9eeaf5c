// Package main implements the extdiscovery command and MCP server.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/extdiscovery/internal/config"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extdiscovery",
		Short: "Discover extensions in a site tree",
		Long: `extdiscovery finds extension manifests (*.info.yml) below one or
more search paths. Only the profiles, modules and themes directories of
each search path are entered, and directories that never hold
extensions (vendor, assets, config, tests, hidden directories, ...)
are pruned without being read.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML config file (default $"+config.EnvConfig+")")
	cmd.PersistentFlags().BoolVar(&flags.includeTests, "include-tests", false, "Descend into tests directories")
	cmd.PersistentFlags().StringSliceVar(&flags.skip, "skip", nil, "Additional directory names to skip (repeatable)")
	cmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Log pruned directories and scan progress to stderr")

	cmd.AddCommand(newScanCmd(), newCheckCmd(), newServeCmd())

	return cmd
}
