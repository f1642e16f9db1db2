package mcp

import (
	"context"

	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/reports"
)

type reportsService interface {
	Analyze(ctx context.Context, params batch.Params, progress batch.ProgressFunc) (*batch.Report, error)
	Get(ctx context.Context, id string) (*batch.Report, error)
	List(ctx context.Context, page, size int) (*reports.Page, error)
}

// contextService is what the tool handlers need. It is an interface so tests can mock it.
type contextService interface {
	ExerciseTypes() []exercise.Info
	GetReport(ctx context.Context, id string) (*batch.Report, error)
	ListReports(ctx context.Context, page, size int) (*reports.Page, error)
	AnalyzeFrames(ctx context.Context, params batch.Params) (*batch.Report, error)
}

// ContextService answers MCP tool calls from the exercise catalogue and the reports service.
type ContextService struct {
	reports reportsService
}

func NewContextService(reportsSvc reportsService) *ContextService {
	return &ContextService{
		reports: reportsSvc,
	}
}

func (s *ContextService) ExerciseTypes() []exercise.Info {
	return exercise.Catalogue()
}

func (s *ContextService) GetReport(ctx context.Context, id string) (*batch.Report, error) {
	return s.reports.Get(ctx, id)
}

func (s *ContextService) ListReports(ctx context.Context, page, size int) (*reports.Page, error) {
	return s.reports.List(ctx, page, size)
}

// AnalyzeFrames runs a batch analysis and stores the report, same as the HTTP batch endpoint.
func (s *ContextService) AnalyzeFrames(ctx context.Context, params batch.Params) (*batch.Report, error) {
	return s.reports.Analyze(ctx, params, nil)
}
