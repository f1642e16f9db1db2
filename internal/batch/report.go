package batch

import (
	"math"
	"time"

	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/pose"

	"gonum.org/v1/gonum/stat"
)

// Status can be one of EXCELLENT, GOOD, NEEDS_IMPROVEMENT, POOR.
type Status string

const (
	StatusExcellent        Status = "EXCELLENT"
	StatusGood             Status = "GOOD"
	StatusNeedsImprovement Status = "NEEDS_IMPROVEMENT"
	StatusPoor             Status = "POOR"
)

const (
	RecommendationCritical    = "⚠️ CRITICAL: Address form issues before continuing with this exercise"
	RecommendationConsistency = "⚠️ Focus on improving form consistency"
	RecommendationTechnique   = "📚 Consider reviewing proper exercise technique"
	RecommendationKeepGoing   = "✅ Good form! Keep practicing to maintain consistency"
)

// Frame is one input frame. Only the first observation is analyzed.
type Frame struct {
	Observations []pose.Observation `json:"observations"`
}

type FrameRecord struct {
	FrameNumber    int                  `json:"frame_number"`
	Timestamp      float64              `json:"timestamp"`
	PeopleDetected int                  `json:"people_detected"`
	Analyzed       bool                 `json:"analyzed"`
	Issues         []exercise.FormIssue `json:"issues"`
	FormScore      float64              `json:"form_score"`
	ExerciseType   exercise.Type        `json:"exercise_type"`
}

// Summary is the aggregated verdict over a sequence of frame records.
type Summary struct {
	OverallFormScore    float64                   `json:"overall_form_score"`
	Status              Status                    `json:"status"`
	AnalyzedFrames      int                       `json:"analyzed_frames"`
	FramesWithPeople    int                       `json:"frames_with_people"`
	IssueSeverityTotals map[exercise.Severity]int `json:"issue_severity_totals"`
	Recommendations     []string                  `json:"recommendations"`
}

type Report struct {
	ID           string            `json:"id"`
	ExerciseType exercise.Type     `json:"exercise_type"`
	Coverage     exercise.Coverage `json:"coverage"`
	TotalFrames  int               `json:"total_frames"`
	Duration     float64           `json:"duration"`
	FPS          float64           `json:"fps"`
	RepCount     int               `json:"rep_count"`
	Summary
	FrameRecords []FrameRecord `json:"frame_records"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Aggregate folds frame records into a summary. Frames scoring 0 (nobody
// detected) are left out of the mean.
func Aggregate(records []FrameRecord) Summary {
	scores := make([]float64, 0, len(records))
	framesWithPeople := 0
	totals := map[exercise.Severity]int{
		exercise.SeverityCritical: 0,
		exercise.SeverityWarning:  0,
		exercise.SeverityInfo:     0,
	}

	for _, rec := range records {
		if rec.PeopleDetected > 0 {
			framesWithPeople++
		}
		if rec.FormScore > 0 {
			scores = append(scores, rec.FormScore)
		}
		for severity, n := range exercise.CountBySeverity(rec.Issues) {
			totals[severity] += n
		}
	}

	// bands are decided on the exact mean, rounding is for the stored value only
	mean := 0.0
	if len(scores) > 0 {
		mean = stat.Mean(scores, nil)
	}

	return Summary{
		OverallFormScore:    round2(mean),
		Status:              StatusFor(mean),
		AnalyzedFrames:      len(scores),
		FramesWithPeople:    framesWithPeople,
		IssueSeverityTotals: totals,
		Recommendations:     recommendations(mean, totals, framesWithPeople),
	}
}

func StatusFor(score float64) Status {
	switch {
	case score >= 85:
		return StatusExcellent
	case score >= 70:
		return StatusGood
	case score >= 50:
		return StatusNeedsImprovement
	default:
		return StatusPoor
	}
}

func recommendations(overall float64, totals map[exercise.Severity]int, framesWithPeople int) []string {
	recs := make([]string, 0)
	if totals[exercise.SeverityCritical] > 0 {
		recs = append(recs, RecommendationCritical)
	}
	if float64(totals[exercise.SeverityWarning]) > 0.5*float64(framesWithPeople) {
		recs = append(recs, RecommendationConsistency)
	}
	if overall < 70 {
		recs = append(recs, RecommendationTechnique)
	}
	if len(recs) == 0 {
		recs = append(recs, RecommendationKeepGoing)
	}
	return recs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
