package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/telemetry/metrics"
	"github.com/2beens/formcheck/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=repo_mocks_test.go -package=reports_test

type reportsRepo interface {
	Add(ctx context.Context, report *batch.Report) error
	Get(ctx context.Context, id string) (*batch.Report, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Page(ctx context.Context, page, size int) ([]Overview, error)
}

type Page struct {
	Reports []Overview `json:"reports"`
	Total   int        `json:"total"`
}

// Service runs batch analyses and keeps their reports.
type Service struct {
	repo           reportsRepo
	runner         *batch.Runner
	metricsManager *metrics.Manager
}

func NewService(repo reportsRepo, runner *batch.Runner, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		runner:         runner,
		metricsManager: metricsManager,
	}
}

// Analyze runs the batch pipeline and stores the resulting report.
func (s *Service) Analyze(ctx context.Context, params batch.Params, progress batch.ProgressFunc) (_ *batch.Report, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.reports.analyze")
	span.SetAttributes(
		attribute.String("exercise", string(params.ExerciseType)),
		attribute.Int("frames", len(params.Frames)),
	)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	started := time.Now()
	report, err := s.runner.Run(ctx, params, progress)
	if err != nil {
		return nil, fmt.Errorf("run batch: %w", err)
	}

	if s.metricsManager != nil {
		exType := string(report.ExerciseType)
		s.metricsManager.HistogramBatchDuration.WithLabelValues(exType).Observe(time.Since(started).Seconds())
		s.metricsManager.CounterFramesAnalyzed.WithLabelValues(exType, metrics.ModeBatch).Add(float64(report.AnalyzedFrames))
		s.metricsManager.CounterRepsCounted.WithLabelValues(exType).Add(float64(report.RepCount))
		for _, rec := range report.FrameRecords {
			s.metricsManager.ObserveIssues(report.ExerciseType, rec.Issues)
		}
	}

	if err := s.repo.Add(ctx, report); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	log.Debugf("report %s stored: %s, score %.2f, reps %d", report.ID, report.ExerciseType, report.OverallFormScore, report.RepCount)

	return report, nil
}

func (s *Service) Get(ctx context.Context, id string) (_ *batch.Report, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.reports.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.reports.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, page, size int) (_ *Page, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.reports.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	overviews, err := s.repo.Page(ctx, page, size)
	if err != nil {
		return nil, fmt.Errorf("get reports page: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}

	return &Page{
		Reports: overviews,
		Total:   total,
	}, nil
}
