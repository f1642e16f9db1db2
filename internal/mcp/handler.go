package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/reports"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Handler parses tool input, calls the service and formats the MCP result.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

// ListExerciseTypesTool returns the MCP tool handler for list_exercise_types.
func (h *Handler) ListExerciseTypesTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		return jsonResult(h.service.ExerciseTypes())
	}
}

// GetReportInput is the input for get_report.
type GetReportInput struct {
	ID            string `json:"id" jsonschema:"Report id, as returned by list_reports or analyze_frames"`
	IncludeFrames bool   `json:"include_frames,omitempty" jsonschema:"Include the per-frame records (can be large)"`
}

// GetReportTool returns the MCP tool handler for get_report.
func (h *Handler) GetReportTool() func(context.Context, *mcp.CallToolRequest, GetReportInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in GetReportInput) (*mcp.CallToolResult, any, error) {
		if in.ID == "" {
			return errorResult("Missing id")
		}
		report, err := h.service.GetReport(ctx, in.ID)
		if errors.Is(err, reports.ErrReportNotFound) {
			return errorResult("Report not found: " + in.ID)
		}
		if err != nil {
			return errorResult("Error fetching report: " + err.Error())
		}
		if !in.IncludeFrames {
			trimmed := *report
			trimmed.FrameRecords = nil
			report = &trimmed
		}
		return jsonResult(report)
	}
}

// ListReportsInput is the input for list_reports.
type ListReportsInput struct {
	Page int `json:"page,omitempty" jsonschema:"Page number, starting at 1 (default 1)"`
	Size int `json:"size,omitempty" jsonschema:"Page size (default 10, max 100)"`
}

// ListReportsTool returns the MCP tool handler for list_reports.
func (h *Handler) ListReportsTool() func(context.Context, *mcp.CallToolRequest, ListReportsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ListReportsInput) (*mcp.CallToolResult, any, error) {
		page, size := in.Page, in.Size
		if page < 1 {
			page = 1
		}
		if size < 1 {
			size = defaultPageSize
		}
		if size > maxPageSize {
			size = maxPageSize
		}
		p, err := h.service.ListReports(ctx, page, size)
		if err != nil {
			return errorResult("Error listing reports: " + err.Error())
		}
		return jsonResult(p)
	}
}

// AnalyzeFramesInput is the input for analyze_frames.
type AnalyzeFramesInput struct {
	ExerciseType string        `json:"exercise_type" jsonschema:"Exercise type (e.g. squat, bicep_curl), see list_exercise_types"`
	FPS          float64       `json:"fps,omitempty" jsonschema:"Frames per second of the source video (default 30)"`
	Frames       []batch.Frame `json:"frames" jsonschema:"Frames in order, each with zero or more pose observations"`
}

// AnalyzeFramesTool returns the MCP tool handler for analyze_frames.
// The per-frame records are left out of the result, use get_report to fetch them.
func (h *Handler) AnalyzeFramesTool() func(context.Context, *mcp.CallToolRequest, AnalyzeFramesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in AnalyzeFramesInput) (*mcp.CallToolResult, any, error) {
		exerciseType, err := exercise.ParseType(in.ExerciseType)
		if err != nil {
			return errorResult("Invalid exercise_type: " + in.ExerciseType)
		}
		if in.FPS < 0 {
			return errorResult("Invalid fps: must not be negative")
		}
		report, err := h.service.AnalyzeFrames(ctx, batch.Params{
			ExerciseType: exerciseType,
			FPS:          in.FPS,
			Frames:       in.Frames,
		})
		if err != nil {
			return errorResult("Error analyzing frames: " + err.Error())
		}
		trimmed := *report
		trimmed.FrameRecords = nil
		return jsonResult(&trimmed)
	}
}

func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding result: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}
