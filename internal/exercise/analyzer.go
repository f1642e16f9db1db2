package exercise

import (
	"fmt"
	"time"

	"github.com/2beens/formcheck/internal/pose"
	log "github.com/sirupsen/logrus"
)

const DefaultIssueWindow = 2 * time.Second

// AnalysisResult is what a single streaming analysis call produces.
// Issues are the recent ones (inside the recency window), FormScore only
// accounts for the issues fired by this call.
type AnalysisResult struct {
	Exercise  Type               `json:"exercise"`
	Coverage  Coverage           `json:"coverage"`
	Supported bool               `json:"supported"`
	RepCount  int                `json:"rep_count"`
	Phase     Phase              `json:"phase"`
	FrontLeg  string             `json:"front_leg,omitempty"`
	Angles    map[string]float64 `json:"angles"`
	Issues    []FormIssue        `json:"issues"`
	Feedback  []string           `json:"feedback"`
	FormScore float64            `json:"form_score"`
}

type AnalyzerOption func(a *Analyzer)

// WithClock replaces the wall clock, mainly for tests and frame-timed batch runs.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIssueWindow sets the recency window issues are surfaced for.
func WithIssueWindow(window time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if window > 0 {
			a.window = window
		}
	}
}

// WithMaxIssueAge bounds the issue log: entries older than maxAge are pruned at
// the start of every call. Zero keeps the log unbounded.
func WithMaxIssueAge(maxAge time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.maxIssueAge = maxAge
	}
}

// Analyzer holds the state of one exercise for one session.
// It is not safe for concurrent use; calls must arrive in frame order.
type Analyzer struct {
	exerciseType Type
	rules        *ruleSet
	counter      *RepCounter
	issues       issueLog
	now          func() time.Time
	frameTime    time.Time
	window       time.Duration
	maxIssueAge  time.Duration
}

func NewAnalyzer(exerciseType Type, opts ...AnalyzerOption) (*Analyzer, error) {
	if !exerciseType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExerciseType, exerciseType)
	}

	a := &Analyzer{
		exerciseType: exerciseType,
		rules:        rulesFor(exerciseType),
		now:          time.Now,
		window:       DefaultIssueWindow,
	}
	for _, opt := range opts {
		opt(a)
	}

	// window must not outlive the pruning age, or pruning would change results
	if a.maxIssueAge > 0 && a.maxIssueAge < a.window {
		a.maxIssueAge = a.window
	}

	// the counter sees the time of the frame being analyzed
	a.counter = NewRepCounter(exerciseType, func() time.Time {
		return a.frameTime
	})

	return a, nil
}

func (a *Analyzer) ExerciseType() Type {
	return a.exerciseType
}

func (a *Analyzer) RepCount() int {
	return a.counter.Count()
}

// Analyze runs one frame through the rule set: phase, rep counter, checks, feedback.
func (a *Analyzer) Analyze(obs pose.Observation) (AnalysisResult, error) {
	if obs.IsEmpty() {
		return AnalysisResult{}, pose.ErrEmptyObservation
	}

	now := a.now()
	a.frameTime = now
	if a.maxIssueAge > 0 {
		a.issues.prune(now, a.maxIssueAge)
	}

	m := newMeasurement(obs.Normalize())
	a.rules.measure(m)

	phase := a.rules.classify(m)
	repCount := a.counter.Update(phase)

	fired := runChecks(a.rules.checks, m, now)
	for _, issue := range fired {
		a.issues.add(issue)
	}

	recent := a.issues.recent(now, a.window)

	log.Tracef("analyzer %s: phase=%s reps=%d fired=%d recent=%d", a.exerciseType, phase, repCount, len(fired), len(recent))

	return AnalysisResult{
		Exercise:  a.exerciseType,
		Coverage:  a.exerciseType.Coverage(),
		Supported: a.exerciseType.Coverage() == CoverageDedicated,
		RepCount:  repCount,
		Phase:     phase,
		FrontLeg:  m.frontLeg,
		Angles:    m.angles,
		Issues:    recent,
		Feedback:  Feedback(recent),
		FormScore: Score(fired),
	}, nil
}

// Reset clears the rep counter and the issue log.
func (a *Analyzer) Reset() {
	a.counter.Reset()
	a.issues.reset()
}

// IssueLogLen is the size of the internal issue log, including issues outside the window.
func (a *Analyzer) IssueLogLen() int {
	return a.issues.len()
}
