package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/extdiscovery/internal/discovery"
	"github.com/taigrr/extdiscovery/internal/discoveryfilter"
	"github.com/taigrr/extdiscovery/internal/index"
)

var (
	discoveryService   *discovery.Service
	defaultSearchPaths []string
	indexDB            *sql.DB
)

func handleDiscover(ctx context.Context, req *mcp.CallToolRequest, input DiscoverInput) (*mcp.CallToolResult, DiscoverOutput, error) {
	searchPaths := defaultSearchPaths
	if len(input.SearchPaths) > 0 {
		searchPaths = input.SearchPaths
	}

	svc := discoveryService
	if input.IncludeTests || len(input.Skip) > 0 {
		cfg := svc.Filter().Config()
		cfg.IncludeTestDirectories = cfg.IncludeTestDirectories || input.IncludeTests
		cfg.ExtraSkippedNames = append(cfg.ExtraSkippedNames, input.Skip...)
		svc = svc.WithFilter(discoveryfilter.NewWithConfig(&cfg))
	}

	result, err := svc.Scan(ctx, searchPaths)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, DiscoverOutput{}, err
	}

	var scanID int64
	if input.Record {
		if indexDB == nil {
			return &mcp.CallToolResult{IsError: true}, DiscoverOutput{},
				fmt.Errorf("no index configured: start the server with --index to record scans")
		}
		scanID, err = index.RecordScan(ctx, indexDB, searchPaths, result)
		if err != nil {
			return &mcp.CallToolResult{IsError: true}, DiscoverOutput{}, err
		}
	}

	total := len(result.Extensions)
	offset := max(input.Offset, 0)
	limit := input.Limit
	if limit <= 0 {
		limit = total
	}

	extensions := result.Extensions
	if offset >= total {
		extensions = extensions[:0]
	} else {
		// Compared as a remainder so a huge limit cannot overflow offset+limit.
		end := total
		if limit < total-offset {
			end = offset + limit
		}
		extensions = extensions[offset:end]
	}

	return nil, DiscoverOutput{
		Extensions: extensions,
		Overridden: result.Overridden,
		Stats:      result.Stats,
		Total:      total,
		HasMore:    total > offset+len(extensions),
		ScanID:     scanID,
	}, nil
}

func handleClassify(ctx context.Context, req *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, ClassifyOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return &mcp.CallToolResult{IsError: true}, ClassifyOutput{}, fmt.Errorf("path cannot be empty")
	}

	entry := discoveryfilter.NewPathEntry(path, input.IsDir)
	accepted, rule := discoveryService.Filter().Decide(entry)

	return nil, ClassifyOutput{
		Path:     entry.RelPath(),
		Accepted: accepted,
		Rule:     rule.String(),
	}, nil
}

func handleLastScan(ctx context.Context, req *mcp.CallToolRequest, input LastScanInput) (*mcp.CallToolResult, LastScanOutput, error) {
	scan, err := index.LatestScan(ctx, indexDB)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &mcp.CallToolResult{IsError: true}, LastScanOutput{}, fmt.Errorf("no scans recorded yet")
		}
		return &mcp.CallToolResult{IsError: true}, LastScanOutput{}, err
	}

	extensions, err := index.Extensions(ctx, indexDB, scan.ID)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, LastScanOutput{}, err
	}

	return nil, LastScanOutput{
		ScanID:      scan.ID,
		CreatedAt:   scan.CreatedAt.Format(time.RFC3339),
		SearchPaths: slices.Clone(scan.SearchPaths),
		Stats:       scan.Stats,
		Extensions:  extensions,
	}, nil
}
