package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/pose"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const DefaultFPS = 30.0

var ErrTooManyFrames = errors.New("too many frames")

// Progress is reported after every processed frame.
type Progress struct {
	ProgressPercent float64 `json:"progress_percent"`
	CurrentFrame    int     `json:"current_frame"`
	TotalFrames     int     `json:"total_frames"`
	PeopleDetected  int     `json:"people_detected"`
}

type ProgressFunc func(p Progress)

type Params struct {
	ExerciseType exercise.Type
	// FPS is used for timestamps and the duration. Zero means the runner default.
	FPS    float64
	Frames []Frame
}

type Runner struct {
	issueWindow time.Duration
	maxFrames   int
	defaultFPS  float64
	now         func() time.Time
}

type RunnerOption func(r *Runner)

func WithMaxFrames(maxFrames int) RunnerOption {
	return func(r *Runner) {
		r.maxFrames = maxFrames
	}
}

func WithIssueWindow(window time.Duration) RunnerOption {
	return func(r *Runner) {
		r.issueWindow = window
	}
}

// WithDefaultFPS sets the frame rate used when a request carries none.
func WithDefaultFPS(fps float64) RunnerOption {
	return func(r *Runner) {
		if fps > 0 {
			r.defaultFPS = fps
		}
	}
}

func WithNow(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		issueWindow: exercise.DefaultIssueWindow,
		defaultFPS:  DefaultFPS,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run analyzes frames in order and aggregates them into a report.
// The context is checked before every frame; a cancelled run returns no report.
func (r *Runner) Run(ctx context.Context, params Params, progress ProgressFunc) (*Report, error) {
	exType := params.ExerciseType
	if !exType.IsValid() {
		return nil, fmt.Errorf("%w: %q", exercise.ErrUnknownExerciseType, exType)
	}
	if r.maxFrames > 0 && len(params.Frames) > r.maxFrames {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFrames, len(params.Frames), r.maxFrames)
	}

	fps := params.FPS
	if fps <= 0 {
		fps = r.defaultFPS
	}

	startedAt := r.now()
	frameTime := startedAt

	// streaming analyzer on the frame clock, only used for counting reps
	repAnalyzer, err := exercise.NewAnalyzer(
		exType,
		exercise.WithClock(func() time.Time { return frameTime }),
		exercise.WithIssueWindow(r.issueWindow),
		exercise.WithMaxIssueAge(r.issueWindow),
	)
	if err != nil {
		return nil, fmt.Errorf("create analyzer: %w", err)
	}

	total := len(params.Frames)
	records := make([]FrameRecord, 0, total)
	for idx, frame := range params.Frames {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch cancelled at frame %d/%d: %w", idx, total, err)
		}

		offset := float64(idx) / fps
		frameTime = startedAt.Add(time.Duration(offset * float64(time.Second)))

		rec := FrameRecord{
			FrameNumber:    idx,
			Timestamp:      offset,
			PeopleDetected: len(frame.Observations),
			Issues:         []exercise.FormIssue{},
			ExerciseType:   exType,
		}

		if rec.PeopleDetected > 0 {
			obs := frame.Observations[0].Normalize()
			rec.Issues, rec.FormScore = exercise.EvaluateBatchFrame(exType, obs, frameTime)
			rec.Analyzed = !obs.IsEmpty()

			if _, err := repAnalyzer.Analyze(obs); err != nil && !errors.Is(err, pose.ErrEmptyObservation) {
				return nil, fmt.Errorf("analyze frame %d: %w", idx, err)
			}
		}

		records = append(records, rec)

		if progress != nil {
			progress(Progress{
				ProgressPercent: float64(idx+1) / float64(total) * 100,
				CurrentFrame:    idx + 1,
				TotalFrames:     total,
				PeopleDetected:  rec.PeopleDetected,
			})
		}
	}

	summary := Aggregate(records)
	log.Debugf("batch %s: %d frames, %d analyzed, score %.2f", exType, total, summary.AnalyzedFrames, summary.OverallFormScore)

	return &Report{
		ID:           uuid.NewString(),
		ExerciseType: exType,
		Coverage:     exType.Coverage(),
		TotalFrames:  total,
		Duration:     float64(total) / fps,
		FPS:          fps,
		RepCount:     repAnalyzer.RepCount(),
		Summary:      summary,
		FrameRecords: records,
		CreatedAt:    startedAt,
	}, nil
}
