package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/codemetrics/internal/output"
	"github.com/panbanda/codemetrics/internal/service/analysis"
	"github.com/panbanda/codemetrics/pkg/models"
)

// AnalyzeInput is the base input for all tools.
type AnalyzeInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Directory to analyze. Defaults to the current directory."`
	Ref    string `json:"ref,omitempty" jsonschema:"Git revision to analyze instead of the working tree, e.g. HEAD~1 or a branch name."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// MetricsInput configures analyze_metrics.
type MetricsInput struct {
	AnalyzeInput
	UnitsOnly bool `json:"units_only,omitempty" jsonschema:"Return only the unit list and summary, omitting per-file records."`
}

// DuplicatesInput configures find_duplicates.
type DuplicatesInput struct {
	AnalyzeInput
	MinLines       int `json:"min_lines,omitempty" jsonschema:"Minimum unit length in lines. Default 5."`
	MinOccurrences int `json:"min_occurrences,omitempty" jsonschema:"Minimum units per group. Default 2."`
}

func getPath(input AnalyzeInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

// formatOutput encodes data for a tool response. Markdown is TOON in a
// code fence.
func formatOutput(data any, format output.Format) (string, error) {
	var buf strings.Builder
	encoding := format
	if format == output.FormatMarkdown {
		encoding = output.FormatTOON
	}
	if err := output.Encode(&buf, encoding, data); err != nil {
		return "", err
	}
	text := strings.TrimSuffix(buf.String(), "\n")
	if format == output.FormatMarkdown {
		return "```\n" + text + "\n```", nil
	}
	return text, nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) analyze(ctx context.Context, input AnalyzeInput, opts analysis.Options) (*models.AnalysisResult, error) {
	opts.Ref = input.Ref
	svc := analysis.New(analysis.WithConfig(s.config))
	scan, err := svc.Scan(getPath(input), opts.Ref)
	if err != nil {
		return nil, err
	}
	if len(scan.Files) == 0 {
		return nil, fmt.Errorf("no source files found in %s", scan.Root)
	}
	return svc.Run(ctx, scan, opts)
}

func (s *Server) handleAnalyzeMetrics(ctx context.Context, req *mcp.CallToolRequest, input MetricsInput) (*mcp.CallToolResult, any, error) {
	result, err := s.analyze(ctx, input.AnalyzeInput, analysis.Options{})
	if err != nil {
		return toolError(err.Error())
	}

	if input.UnitsOnly {
		out := struct {
			Units   []models.UnitMetrics `json:"units" toon:"units"`
			Summary models.Summary       `json:"summary" toon:"summary"`
		}{result.Units(), result.Summary}
		return toolResult(out, getFormat(input.AnalyzeInput))
	}
	return toolResult(result, getFormat(input.AnalyzeInput))
}

func (s *Server) handleFindDuplicates(ctx context.Context, req *mcp.CallToolRequest, input DuplicatesInput) (*mcp.CallToolResult, any, error) {
	result, err := s.analyze(ctx, input.AnalyzeInput, analysis.Options{
		MinLines:       input.MinLines,
		MinOccurrences: input.MinOccurrences,
	})
	if err != nil {
		return toolError(err.Error())
	}

	out := struct {
		Project    string                  `json:"project" toon:"project"`
		Groups     int                     `json:"groups" toon:"groups"`
		Duplicates []models.DuplicateGroup `json:"duplicates" toon:"duplicates"`
	}{result.Project, len(result.Duplicates), result.Duplicates}
	return toolResult(out, getFormat(input.AnalyzeInput))
}
