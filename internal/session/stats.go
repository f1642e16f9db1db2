package session

import (
	"context"
	"time"

	"github.com/2beens/formcheck/internal/exercise"
)

const (
	DefaultStatsTTL = time.Hour
	statsKeyPrefix  = "formcheck-session||"
)

// Stats are kept per session across analysis calls.
type Stats struct {
	SessionID              string                `json:"session_id"`
	CreatedAt              time.Time             `json:"created_at"`
	LastActivity           time.Time             `json:"last_activity"`
	FrameCount             int                   `json:"frame_count"`
	TotalAnalysisSeconds   float64               `json:"total_analysis_seconds"`
	AverageAnalysisSeconds float64               `json:"average_analysis_seconds"`
	RepCounts              map[exercise.Type]int `json:"rep_counts"`
}

// FrameResult is what gets recorded for a single analyzed frame.
type FrameResult struct {
	ExerciseType exercise.Type
	RepCount     int
	Took         time.Duration
	At           time.Time
}

type StatsStore interface {
	RecordFrame(ctx context.Context, sessionID string, frame FrameResult) (*Stats, error)
	// ResetReps zeroes the rep count of one exercise. A session without stats is left alone.
	ResetReps(ctx context.Context, sessionID string, exType exercise.Type) error
	Get(ctx context.Context, sessionID string) (*Stats, error)
	Delete(ctx context.Context, sessionID string) error
}

func newStats(sessionID string, at time.Time) *Stats {
	return &Stats{
		SessionID:    sessionID,
		CreatedAt:    at,
		LastActivity: at,
		RepCounts:    make(map[exercise.Type]int),
	}
}

func (s *Stats) apply(frame FrameResult) {
	if s.RepCounts == nil {
		s.RepCounts = make(map[exercise.Type]int)
	}
	s.FrameCount++
	s.TotalAnalysisSeconds += frame.Took.Seconds()
	s.AverageAnalysisSeconds = s.TotalAnalysisSeconds / float64(s.FrameCount)
	s.RepCounts[frame.ExerciseType] = frame.RepCount
	s.LastActivity = frame.At
}

func (s *Stats) resetReps(exType exercise.Type) {
	if s.RepCounts == nil {
		s.RepCounts = make(map[exercise.Type]int)
	}
	s.RepCounts[exType] = 0
}

func statsKey(sessionID string) string {
	return statsKeyPrefix + sessionID
}
