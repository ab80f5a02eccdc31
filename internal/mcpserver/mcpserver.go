// Package mcpserver exposes codemetrics analysis as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/codemetrics/pkg/config"
)

// Server wraps the MCP server and registers the analysis tools.
type Server struct {
	server *mcp.Server
	config *config.Config
}

// NewServer creates an MCP server. A nil cfg uses defaults.
func NewServer(version string, cfg *config.Config) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "codemetrics",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, config: cfg}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds the analysis tools to the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_metrics",
		Description: describeMetrics,
	}, s.handleAnalyzeMetrics)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_duplicates",
		Description: describeDuplicates,
	}, s.handleFindDuplicates)
}

const describeMetrics = `Computes line counts, cyclomatic complexity and maintainability index for every function, method and constructor of the Java, C# and Go files under a directory.

USE WHEN:
- Finding functions that are hard to test or maintain
- Picking refactoring candidates before a review
- Comparing the state of a directory at a git revision

INTERPRETING RESULTS:
- Cyclomatic complexity > 10: many code paths, consider splitting
- Cyclomatic complexity > 15: high risk
- Maintainability index < 65: hard to maintain; < 20: very hard
- File maintainability is the mean over its units, 100 for files without units
- P50/P90 in the summary show the complexity distribution across units

METRICS RETURNED:
- Per-file: total/code/comment lines, summed complexity, mean maintainability, units
- Per-unit: name, kind, signature, lines, complexity, LOC, maintainability
- Summary, duplicate groups, and files skipped because they did not parse`

const describeDuplicates = `Finds functions repeated across files by fingerprinting each unit's signature, length and complexity.

USE WHEN:
- Looking for copy-pasted methods to consolidate
- Checking whether a fix must be applied in several places

INTERPRETING RESULTS:
- Each group lists units with the same signature, LOC and complexity in at least two files
- Units shorter than min_lines are ignored
- Matching is by fingerprint only; bodies may still differ in detail
- token_count is the length of the preview text, a rough size indicator`
