package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/extdiscovery/internal/types"
)

type (
	// DiscoverInput contains parameters for discovering extensions.
	DiscoverInput struct {
		SearchPaths  []string `json:"searchPaths,omitempty" jsonschema:"Search paths in precedence order (default: the server's search paths)"`
		IncludeTests bool     `json:"includeTests,omitempty" jsonschema:"Descend into tests directories (default: false)"`
		Skip         []string `json:"skip,omitempty" jsonschema:"Additional directory names to skip"`
		Limit        int      `json:"limit,omitempty" jsonschema:"Maximum extensions to return (default: all)"`
		Offset       int      `json:"offset,omitempty" jsonschema:"Skip first N extensions for pagination (default: 0)"`
		Record       bool     `json:"record,omitempty" jsonschema:"Record the scan in the index, if one is configured"`
	}

	// DiscoverOutput contains discovered extensions.
	DiscoverOutput struct {
		Extensions []types.Extension `json:"extensions"`
		Overridden []types.Extension `json:"overridden,omitempty"`
		Stats      types.ScanStats   `json:"stats"`
		Total      int               `json:"total"`
		HasMore    bool              `json:"hasMore,omitempty"`
		ScanID     int64             `json:"scanId,omitempty"`
	}

	// ClassifyInput contains parameters for classifying a path.
	ClassifyInput struct {
		Path  string `json:"path" jsonschema:"Path relative to a search path"`
		IsDir bool   `json:"isDir,omitempty" jsonschema:"Whether the path is a directory (default: false)"`
	}

	// ClassifyOutput contains the filter decision for a path.
	ClassifyOutput struct {
		Path     string `json:"path"`
		Accepted bool   `json:"accepted"`
		Rule     string `json:"rule"`
	}

	// LastScanInput contains parameters for reading the last recorded scan.
	LastScanInput struct{}

	// LastScanOutput contains the last recorded scan.
	LastScanOutput struct {
		ScanID      int64             `json:"scanId"`
		CreatedAt   string            `json:"createdAt"`
		SearchPaths []string          `json:"searchPaths"`
		Stats       types.ScanStats   `json:"stats"`
		Extensions  []types.Extension `json:"extensions"`
	}
)

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "discover",
		Description: "Discover extensions (*.info.yml manifests) below the search paths. Later search paths override earlier ones for extensions with the same name. Supports pagination with offset/limit.",
	}, handleDiscover)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify",
		Description: "Report whether the discovery filter accepts a path relative to a search path, and which rule decided it.",
	}, handleClassify)

	if indexDB != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "last_scan",
			Description: "Return the most recently recorded scan from the index.",
		}, handleLastScan)
	}
}
