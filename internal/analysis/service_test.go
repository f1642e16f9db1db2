package analysis_test

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/2beens/formcheck/internal/analysis"
	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/pose"
	"github.com/2beens/formcheck/internal/session"
	"github.com/2beens/formcheck/internal/telemetry/metrics"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*analysis.Service, *metrics.Manager, *MockbatchAnalyzer) {
	t.Helper()
	ctrl := gomock.NewController(t)
	batchAnalyzer := NewMockbatchAnalyzer(ctrl)
	metricsManager := metrics.NewTestManager()
	service := analysis.NewService(
		session.NewRegistry(time.Hour),
		session.NewLocalStatsStore(1024*1024, time.Hour),
		batchAnalyzer,
		metricsManager,
	)
	return service, metricsManager, batchAnalyzer
}

func TestService_AnalyzeFrame_CountsRepsAndStats(t *testing.T) {
	service, metricsManager, _ := newTestService(t)
	ctx := context.Background()

	var last *analysis.AnalyzeResponse
	for _, knee := range []float64{175, 65, 175, 65} {
		resp, err := service.AnalyzeFrame(ctx, "s1", exercise.TypeSquat, squatPose(knee, 160))
		require.NoError(t, err)
		require.True(t, resp.Analyzed)
		last = resp
	}
	require.NotNil(t, last.AnalysisResult)
	assert.Equal(t, 2, last.RepCount)
	assert.Equal(t, exercise.PhaseEnd, last.Phase)

	stats, err := service.Stats(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", stats.SessionID)
	assert.Equal(t, 4, stats.FrameCount)
	assert.Equal(t, 2, stats.RepCounts[exercise.TypeSquat])

	assert.Equal(t, 4.0, testutil.ToFloat64(metricsManager.CounterFramesAnalyzed.WithLabelValues("squat", metrics.ModeStreaming)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metricsManager.CounterRepsCounted.WithLabelValues("squat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.GaugeActiveSessions))
}

func TestService_AnalyzeFrame_EmptyObservation(t *testing.T) {
	service, metricsManager, _ := newTestService(t)
	ctx := context.Background()

	resp, err := service.AnalyzeFrame(ctx, "s1", exercise.TypePushup, pose.Observation{})
	require.NoError(t, err)
	assert.False(t, resp.Analyzed)
	assert.Nil(t, resp.AnalysisResult)

	// nothing was recorded for the session
	_, err = service.Stats(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Equal(t, 0.0, testutil.ToFloat64(metricsManager.CounterFramesAnalyzed.WithLabelValues("pushup", metrics.ModeStreaming)))
}

func TestService_AnalyzeFrame_UnknownType(t *testing.T) {
	service, _, _ := newTestService(t)

	resp, err := service.AnalyzeFrame(context.Background(), "s1", "yoga", squatPose(175, 160))
	require.ErrorIs(t, err, exercise.ErrUnknownExerciseType)
	assert.Nil(t, resp)
}

func TestService_AnalyzeFrame_RegistryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := NewMocksessionRegistry(ctrl)
	service := analysis.NewService(registry, nil, nil, nil)

	obs := squatPose(175, 160)
	registry.EXPECT().Analyze("s1", exercise.TypeSquat, obs, gomock.Any()).Return(exercise.AnalysisResult{}, errors.New("boom"))

	resp, err := service.AnalyzeFrame(context.Background(), "s1", exercise.TypeSquat, obs)
	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestService_ResetAndEndSession(t *testing.T) {
	service, metricsManager, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, service.Reset(ctx, "nobody", exercise.TypeSquat), session.ErrSessionNotFound)

	for _, knee := range []float64{175, 65} {
		_, err := service.AnalyzeFrame(ctx, "s1", exercise.TypeSquat, squatPose(knee, 160))
		require.NoError(t, err)
	}
	stats, err := service.Stats(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 1, stats.RepCounts[exercise.TypeSquat])

	require.NoError(t, service.Reset(ctx, "s1", exercise.TypeSquat))

	// visible right away, without waiting for the next frame
	stats, err = service.Stats(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RepCounts[exercise.TypeSquat])
	assert.Equal(t, 2, stats.FrameCount)

	resp, err := service.AnalyzeFrame(ctx, "s1", exercise.TypeSquat, squatPose(175, 160))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.RepCount)

	require.NoError(t, service.EndSession(ctx, "s1"))
	assert.Equal(t, 0.0, testutil.ToFloat64(metricsManager.GaugeActiveSessions))

	_, err = service.Stats(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.ErrorIs(t, service.EndSession(ctx, "s1"), session.ErrSessionNotFound)
}

// splitStatsStore reads and writes in two separate steps, like the redis store does.
type splitStatsStore struct {
	mu    sync.Mutex
	stats map[string]session.Stats
}

func (s *splitStatsStore) load(sessionID string) (session.Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[sessionID]
	return st, ok
}

func (s *splitStatsStore) save(st session.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[st.SessionID] = st
}

func (s *splitStatsStore) RecordFrame(_ context.Context, sessionID string, frame session.FrameResult) (*session.Stats, error) {
	st, ok := s.load(sessionID)
	if !ok {
		st = session.Stats{SessionID: sessionID, CreatedAt: frame.At, RepCounts: map[exercise.Type]int{}}
	}
	runtime.Gosched()
	st.FrameCount++
	st.LastActivity = frame.At
	s.save(st)
	return &st, nil
}

func (s *splitStatsStore) ResetReps(_ context.Context, sessionID string, exType exercise.Type) error {
	st, ok := s.load(sessionID)
	if !ok {
		return nil
	}
	counts := map[exercise.Type]int{}
	for k, v := range st.RepCounts {
		counts[k] = v
	}
	counts[exType] = 0
	st.RepCounts = counts
	s.save(st)
	return nil
}

func (s *splitStatsStore) Get(_ context.Context, sessionID string) (*session.Stats, error) {
	st, ok := s.load(sessionID)
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return &st, nil
}

func (s *splitStatsStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stats, sessionID)
	return nil
}

func TestService_AnalyzeFrame_ConcurrentFramesKeepStats(t *testing.T) {
	store := &splitStatsStore{stats: map[string]session.Stats{}}
	service := analysis.NewService(session.NewRegistry(time.Hour), store, nil, metrics.NewTestManager())
	ctx := context.Background()

	// an http client and a websocket stream feeding the same session
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := service.AnalyzeFrame(ctx, "s1", exercise.TypeSquat, squatPose(175, 160))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	stats, err := service.Stats(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 200, stats.FrameCount)
}

func TestService_AnalyzeBatch(t *testing.T) {
	service, _, batchAnalyzer := newTestService(t)

	params := batch.Params{
		ExerciseType: exercise.TypeLunge,
		FPS:          25,
		Frames:       []batch.Frame{{}, {}},
	}
	batchAnalyzer.EXPECT().
		Analyze(gomock.Any(), params, gomock.Any()).
		DoAndReturn(func(_ context.Context, p batch.Params, progress batch.ProgressFunc) (*batch.Report, error) {
			progress(batch.Progress{CurrentFrame: 1, TotalFrames: 2, ProgressPercent: 50})
			progress(batch.Progress{CurrentFrame: 2, TotalFrames: 2, ProgressPercent: 100})
			return &batch.Report{ID: "r1", ExerciseType: p.ExerciseType, TotalFrames: len(p.Frames)}, nil
		})

	report, err := service.AnalyzeBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "r1", report.ID)
	assert.Equal(t, 2, report.TotalFrames)

	_, err = service.AnalyzeBatch(context.Background(), batch.Params{ExerciseType: "yoga"})
	assert.ErrorIs(t, err, exercise.ErrUnknownExerciseType)
}
