package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/taigrr/extdiscovery/internal/discoveryfilter"
	"github.com/taigrr/extdiscovery/internal/index"
	"github.com/taigrr/extdiscovery/internal/types"
)

func newScanCmd() *cobra.Command {
	var (
		format    string
		indexPath string
	)

	cmd := &cobra.Command{
		Use:   "scan [search-path...]",
		Short: "Discover extensions below the given search paths",
		Long: `Scan walks each search path in order and prints the extensions found.
When the same extension exists in several search paths, the one from
the later path wins; the others are listed as overridden.`,
		Example: `extdiscovery scan core sites/all sites/default
extdiscovery scan --include-tests --format json .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, args)
			if err != nil {
				return err
			}

			result, err := s.service.Scan(cmd.Context(), s.searchPaths)
			if err != nil {
				return err
			}

			if indexPath == "" {
				indexPath = s.cfg.Index
			}
			if indexPath != "" {
				scanID, err := recordScan(cmd, indexPath, s.searchPaths, result)
				if err != nil {
					return err
				}
				if flags.verbose {
					log.Printf("[scan] recorded as scan %d in %s", scanID, indexPath)
				}
			}

			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), result)
			case "text", "":
				return writeText(cmd.OutOrStdout(), result)
			default:
				return fmt.Errorf("unknown format %q: use text or json", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&indexPath, "index", "", "Record the scan in this SQLite index")
	cmd.Flags().Int("rate", 0, "Maximum filesystem entries visited per second (0 = unlimited)")

	return cmd
}

func newCheckCmd() *cobra.Command {
	var isDir bool

	cmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Show whether the filter accepts a path",
		Long: `Check prints the filter decision for a single path relative to a
search path, and the rule that decided it. A trailing slash marks the
path as a directory.`,
		Example: `extdiscovery check modules/node/config/
extdiscovery check --dir profiles/standard/modules/config`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, nil)
			if err != nil {
				return err
			}

			path := args[0]
			dir := isDir || strings.HasSuffix(path, "/")
			accepted, rule := s.service.Filter().Decide(discoveryfilter.NewPathEntry(path, dir))

			verdict := "reject"
			if accepted {
				verdict = "accept"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s (%s)\n", verdict, strings.Trim(path, "/"), rule)
			return err
		},
	}

	cmd.Flags().BoolVarP(&isDir, "dir", "d", false, "Treat the path as a directory")

	return cmd
}

func recordScan(cmd *cobra.Command, indexPath string, searchPaths []string, result types.ScanResult) (int64, error) {
	db, err := index.Open(indexPath)
	if err != nil {
		return 0, fmt.Errorf("open index %s: %w", indexPath, err)
	}
	defer db.Close()

	if err := index.Migrate(db); err != nil {
		return 0, fmt.Errorf("migrate index: %w", err)
	}
	return index.RecordScan(cmd.Context(), db, searchPaths, result)
}

func writeJSON(w io.Writer, result types.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func writeText(w io.Writer, result types.ScanResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tPATH\tSEARCH PATH")
	for _, ext := range result.Extensions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ext.Name, orDash(ext.Type), ext.Path, ext.SearchPath)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, ext := range result.Overridden {
		fmt.Fprintf(w, "overridden: %s (%s in %s)\n", ext.Name, ext.Path, ext.SearchPath)
	}

	st := result.Stats
	_, err := fmt.Fprintf(w, "\n%d extensions, %d overridden; %d entries visited, %d directories pruned\n",
		len(result.Extensions), len(result.Overridden), st.Visited, st.PrunedDirs)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
