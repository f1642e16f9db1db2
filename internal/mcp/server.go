package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with formcheck tools: exercise types, reports
// listing and lookup, and batch analysis of pose frames.
// Used by cmd/formcheck_mcp over stdio and by the main service mounted at /mcp.
func NewServer(reportsSvc reportsService) *mcp.Server {
	h := NewHandler(NewContextService(reportsSvc))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "formcheck",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_exercise_types",
		Description: "Returns all supported exercise types (type, display name, description, rule coverage). Coverage is 'full' for exercises with dedicated form rules and 'generic' otherwise.",
	}, h.ListExerciseTypesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_report",
		Description: "Returns a stored batch analysis report by id: overall form score, status, rep count, issue severity totals, recommendations. Set include_frames to also get the per-frame records.",
	}, h.GetReportTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_reports",
		Description: "Returns stored batch analysis reports, newest first, as a page of overviews plus the total count. Args: page (from 1), size (max 100).",
	}, h.ListReportsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "analyze_frames",
		Description: "Runs a batch form analysis over a sequence of pose frames for one exercise type and stores the report. Only the first observation of each frame is analyzed. Returns the report without per-frame records.",
	}, h.AnalyzeFramesTool())

	return s
}

// NewHTTPHandler serves the given MCP server over streamable HTTP.
func NewHTTPHandler(s *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s
	}, nil)
}
