package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/pose"
	"github.com/2beens/formcheck/internal/session"
	"github.com/2beens/formcheck/internal/telemetry/metrics"
	"github.com/2beens/formcheck/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=analysis_test

type sessionRegistry interface {
	Analyze(sessionID string, exType exercise.Type, obs pose.Observation, then session.FrameFunc) (exercise.AnalysisResult, error)
	Reset(sessionID string, exType exercise.Type, then func()) error
	RepCounts(sessionID string) (map[exercise.Type]int, error)
	Evict(sessionID string) bool
	Len() int
}

type batchAnalyzer interface {
	Analyze(ctx context.Context, params batch.Params, progress batch.ProgressFunc) (*batch.Report, error)
}

// AnalyzeResponse wraps a streaming result. An empty observation yields
// {"analyzed": false} and leaves the session untouched.
type AnalyzeResponse struct {
	Analyzed bool `json:"analyzed"`
	*exercise.AnalysisResult
}

// Service is the entry point for streaming and batch analysis.
type Service struct {
	registry       sessionRegistry
	statsStore     session.StatsStore
	batchAnalyzer  batchAnalyzer
	metricsManager *metrics.Manager
	// ability to inject the clock (for unit testing)
	Now func() time.Time
}

func NewService(
	registry sessionRegistry,
	statsStore session.StatsStore,
	batchAnalyzer batchAnalyzer,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		registry:       registry,
		statsStore:     statsStore,
		batchAnalyzer:  batchAnalyzer,
		metricsManager: metricsManager,
		Now:            time.Now,
	}
}

func (s *Service) AnalyzeFrame(
	ctx context.Context,
	sessionID string,
	exType exercise.Type,
	obs pose.Observation,
) (_ *AnalyzeResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.frame")
	span.SetAttributes(
		attribute.String("session", sessionID),
		attribute.String("exercise", string(exType)),
	)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !exType.IsValid() {
		return nil, fmt.Errorf("%w: %q", exercise.ErrUnknownExerciseType, exType)
	}
	if obs.IsEmpty() {
		return &AnalyzeResponse{Analyzed: false}, nil
	}

	started := s.Now()
	// stats are written before the next frame of the session can start
	res, err := s.registry.Analyze(sessionID, exType, obs, func(res exercise.AnalysisResult, repsBefore int) {
		finished := s.Now()

		if s.metricsManager != nil {
			s.metricsManager.ObserveAnalysis(res, res.RepCount-repsBefore)
		}

		if s.statsStore != nil {
			if _, err := s.statsStore.RecordFrame(ctx, sessionID, session.FrameResult{
				ExerciseType: exType,
				RepCount:     res.RepCount,
				Took:         finished.Sub(started),
				At:           finished,
			}); err != nil {
				// stats are best effort, the analysis itself succeeded
				log.Errorf("record frame stats for session %s: %s", sessionID, err)
			}
		}
	})
	if err != nil {
		if errors.Is(err, pose.ErrEmptyObservation) {
			return &AnalyzeResponse{Analyzed: false}, nil
		}
		return nil, fmt.Errorf("analyze: %w", err)
	}

	if s.metricsManager != nil {
		s.metricsManager.GaugeActiveSessions.Set(float64(s.registry.Len()))
	}

	return &AnalyzeResponse{
		Analyzed:       true,
		AnalysisResult: &res,
	}, nil
}

func (s *Service) Reset(ctx context.Context, sessionID string, exType exercise.Type) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.reset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !exType.IsValid() {
		return fmt.Errorf("%w: %q", exercise.ErrUnknownExerciseType, exType)
	}
	return s.registry.Reset(sessionID, exType, func() {
		if s.statsStore == nil {
			return
		}
		if err := s.statsStore.ResetReps(ctx, sessionID, exType); err != nil {
			log.Errorf("reset rep stats for session %s: %s", sessionID, err)
		}
	})
}

// EndSession drops the analyzer state and the stats of a session.
func (s *Service) EndSession(ctx context.Context, sessionID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.end")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	evicted := s.registry.Evict(sessionID)
	if s.metricsManager != nil {
		s.metricsManager.GaugeActiveSessions.Set(float64(s.registry.Len()))
	}

	if s.statsStore != nil {
		if err := s.statsStore.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("delete session stats: %w", err)
		}
	}

	if !evicted {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Service) Stats(ctx context.Context, sessionID string) (_ *session.Stats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.stats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if s.statsStore == nil {
		return nil, session.ErrSessionNotFound
	}
	return s.statsStore.Get(ctx, sessionID)
}

func (s *Service) AnalyzeBatch(ctx context.Context, params batch.Params) (_ *batch.Report, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.batch")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !params.ExerciseType.IsValid() {
		return nil, fmt.Errorf("%w: %q", exercise.ErrUnknownExerciseType, params.ExerciseType)
	}

	total := len(params.Frames)
	return s.batchAnalyzer.Analyze(ctx, params, func(p batch.Progress) {
		if p.CurrentFrame == total || p.CurrentFrame%100 == 0 {
			log.Tracef("batch %s: %.1f%% (%d/%d)", params.ExerciseType, p.ProgressPercent, p.CurrentFrame, p.TotalFrames)
		}
	})
}
