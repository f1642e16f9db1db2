package exercise

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownExerciseType = errors.New("unknown exercise type")

// Type can be one of:
//   - squat, pushup, lunge, plank (dedicated rule sets)
//   - deadlift, bench_press, overhead_press, bicep_curl, tricep_extension, jumping_jack
//     (generic visibility check only)
type Type string

const (
	TypeSquat           Type = "squat"
	TypePushup          Type = "pushup"
	TypeLunge           Type = "lunge"
	TypePlank           Type = "plank"
	TypeDeadlift        Type = "deadlift"
	TypeBenchPress      Type = "bench_press"
	TypeOverheadPress   Type = "overhead_press"
	TypeBicepCurl       Type = "bicep_curl"
	TypeTricepExtension Type = "tricep_extension"
	TypeJumpingJack     Type = "jumping_jack"
)

// AllTypes lists the exercise vocabulary in a stable order.
var AllTypes = []Type{
	TypeSquat,
	TypePushup,
	TypeLunge,
	TypePlank,
	TypeDeadlift,
	TypeBenchPress,
	TypeOverheadPress,
	TypeBicepCurl,
	TypeTricepExtension,
	TypeJumpingJack,
}

var descriptions = map[Type]string{
	TypeSquat:           "Lower body exercise - form check for knee alignment and depth",
	TypePushup:          "Upper body exercise - form check for body alignment and elbow position",
	TypeLunge:           "Lower body exercise - form check for knee and hip alignment",
	TypePlank:           "Core exercise - form check for body alignment and hip position",
	TypeDeadlift:        "Lower body compound - form check for back alignment and lift mechanics",
	TypeBenchPress:      "Upper body compound - form check for bar path and elbow position",
	TypeOverheadPress:   "Upper body exercise - form check for core engagement and shoulder stability",
	TypeBicepCurl:       "Upper body isolation - form check for elbow position and arm movement",
	TypeTricepExtension: "Upper body isolation - form check for arm alignment and range of motion",
	TypeJumpingJack:     "Cardio exercise - form check for coordination and body alignment",
}

func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownExerciseType, s)
	}
	return t, nil
}

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	_, ok := descriptions[t]
	return ok
}

func (t Type) Description() string {
	if d, ok := descriptions[t]; ok {
		return d
	}
	return "Exercise form analysis"
}

// DisplayName turns bench_press into "Bench Press".
func (t Type) DisplayName() string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Coverage tells whether a type has its own rule set or falls back to the generic check.
type Coverage string

const (
	CoverageDedicated Coverage = "dedicated"
	CoverageGeneric   Coverage = "generic"
)

func (t Type) Coverage() Coverage {
	if _, ok := streamingRules[t]; ok {
		return CoverageDedicated
	}
	return CoverageGeneric
}

// Phase is where in a repetition the subject currently is.
type Phase string

const (
	PhaseStart   Phase = "start"
	PhaseMoving  Phase = "moving"
	PhaseEnd     Phase = "end"
	PhaseHolding Phase = "holding"
)

func (p Phase) String() string {
	return string(p)
}

// Severity can be one of critical, warning, info. No other values are produced.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

func (s Severity) String() string {
	return string(s)
}

func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical,
		SeverityWarning,
		SeverityInfo:
		return true
	default:
		return false
	}
}
