package main

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/taigrr/extdiscovery/internal/index"
)

func newServeCmd() *cobra.Command {
	var indexPath string

	cmd := &cobra.Command{
		Use:   "serve [search-path...]",
		Short: "Run an MCP server over stdio",
		Long: `Serve exposes extension discovery to MCP clients over stdio. The
search paths given here are the defaults for the discover tool.`,
		Example: `extdiscovery serve ~/sites/example/web`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, args)
			if err != nil {
				return err
			}
			discoveryService = s.service
			defaultSearchPaths = s.searchPaths

			if indexPath == "" {
				indexPath = s.cfg.Index
			}
			if indexPath != "" {
				db, err := index.Open(indexPath)
				if err != nil {
					return fmt.Errorf("open index %s: %w", indexPath, err)
				}
				defer db.Close()
				if err := index.Migrate(db); err != nil {
					return fmt.Errorf("migrate index: %w", err)
				}
				indexDB = db
			}

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "extdiscovery",
				Version: version,
			}, nil)

			registerTools(server)

			if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("error running server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&indexPath, "index", "", "SQLite index for recorded scans")

	return cmd
}
