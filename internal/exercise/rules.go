package exercise

import (
	"time"

	"github.com/2beens/formcheck/internal/pose"
)

// measurement carries everything a check may look at for one frame.
type measurement struct {
	obs      pose.Observation
	view     pose.KeypointView
	angles   map[string]float64
	frontLeg string
}

func (m *measurement) angle(name string) float64 {
	return m.angles[name]
}

// check is one geometric rule. fire returns the affected landmarks when the rule triggers.
type check struct {
	id         CheckID
	severity   Severity
	message    string
	suggestion string
	deduction  float64
	fire       func(m *measurement) (affected []string, fired bool)
}

// ruleSet is the per-exercise variant: how to measure a frame, how to classify
// its phase and which checks to run.
type ruleSet struct {
	measure  func(m *measurement)
	classify func(m *measurement) Phase
	checks   []check
}

// streamingRules is the lookup table used by the real-time analyzer.
// Types missing here fall back to genericRules.
var streamingRules = map[Type]*ruleSet{
	TypeSquat:  squatRules,
	TypePushup: pushupRules,
	TypeLunge:  lungeRules,
	TypePlank:  plankRules,
}

func rulesFor(t Type) *ruleSet {
	if rules, ok := streamingRules[t]; ok {
		return rules
	}
	return genericRules
}

// thresholdPhase maps a driving angle to a phase: above upper is Start,
// below lower is End, anything else is Moving.
func thresholdPhase(angle, upper, lower float64) Phase {
	switch {
	case angle > upper:
		return PhaseStart
	case angle < lower:
		return PhaseEnd
	default:
		return PhaseMoving
	}
}

// jointMean averages the angles of the joints whose three landmarks are all present.
// A joint is given as first point, vertex, last point. ok is false when none is complete.
func jointMean(view pose.KeypointView, joints ...[]string) (mean float64, ok bool) {
	n := 0
	for _, j := range joints {
		if !view.Has(j...) {
			continue
		}
		mean += view.Angle(j[0], j[1], j[2])
		n++
	}
	if n == 0 {
		return 0, false
	}
	return mean / float64(n), true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func landmarks(names ...string) []string {
	return names
}

func newMeasurement(obs pose.Observation) *measurement {
	return &measurement{
		obs:    obs,
		view:   pose.NewKeypointView(obs),
		angles: make(map[string]float64),
	}
}

// runChecks evaluates every check once and returns the issues that fired.
func runChecks(checks []check, m *measurement, at time.Time) []FormIssue {
	fired := make([]FormIssue, 0)
	for _, c := range checks {
		affected, ok := c.fire(m)
		if !ok {
			continue
		}
		if affected == nil {
			affected = []string{}
		}
		fired = append(fired, FormIssue{
			Check:         c.id,
			Severity:      c.severity,
			Message:       c.message,
			Suggestion:    c.suggestion,
			AffectedParts: affected,
			DetectedAt:    at,
		})
	}
	return fired
}
