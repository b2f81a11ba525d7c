package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/codepulse/internal/output"
)

// CodeInput is the input of analyze_code.
type CodeInput struct {
	Code     string `json:"code" jsonschema:"Source code to analyze."`
	Language string `json:"language,omitempty" jsonschema:"javascript (default) or python. Aliases such as js and py are accepted."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// FilesInput is the input of analyze_files.
type FilesInput struct {
	Paths    []string `json:"paths,omitempty" jsonschema:"Files or directories to analyze. Defaults to current directory if empty."`
	Language string   `json:"language,omitempty" jsonschema:"Force every file to this language instead of detecting it from the extension."`
	Format   string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

func getFormat(format string) output.Format {
	switch strings.ToLower(format) {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(r output.Renderable, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(r.RenderData(), "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		var buf bytes.Buffer
		if err := r.RenderMarkdown(&buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		out, err := output.MarshalTOON(r.RenderData())
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func toolResult(r output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(r, format)
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

func (s *Server) handleAnalyzeCode(ctx context.Context, req *mcp.CallToolRequest, input CodeInput) (*mcp.CallToolResult, any, error) {
	if input.Code == "" {
		return toolError("no code provided")
	}

	analysis := s.engine.AnalyzeContext(ctx, input.Code, input.Language)
	return toolResult(output.AnalysisReport("", analysis), getFormat(input.Format))
}

func (s *Server) handleAnalyzeFiles(ctx context.Context, req *mcp.CallToolRequest, input FilesInput) (*mcp.CallToolResult, any, error) {
	paths := input.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := s.scanner.ScanPaths(paths)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	report, errs := s.engine.AnalyzeFiles(ctx, files, input.Language)
	if len(report.Files) == 0 && errs != nil {
		return toolError(errs.Error())
	}
	return toolResult(output.BatchView(report), getFormat(input.Format))
}
