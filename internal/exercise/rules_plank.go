package exercise

import (
	"github.com/2beens/formcheck/internal/pose"
)

const (
	CheckPlankHipAlignment CheckID = "plank.hip_alignment"
	CheckPlankHeadPosition CheckID = "plank.head_position"
	CheckLowVisibility     CheckID = "generic.low_visibility"
)

const (
	plankAlignmentTolerance = 0.15
	plankHeadTolerance      = 0.1
	minMeanVisibility       = 0.5
)

// plankHipAlignment and plankHeadPosition are shared with the batch rules.
var plankHipAlignment = check{
	id:         CheckPlankHipAlignment,
	severity:   SeverityCritical,
	message:    "Hips are sagging or too high",
	suggestion: "Keep hips in line with shoulders and heels for proper plank form",
	deduction:  30,
	fire: func(m *measurement) ([]string, bool) {
		if !m.view.Has(pose.LeftShoulder, pose.LeftHip, pose.LeftKnee) {
			return nil, false
		}
		shoulder, hip, knee := m.view[pose.LeftShoulder], m.view[pose.LeftHip], m.view[pose.LeftKnee]
		fired := abs(shoulder.Y-hip.Y) > plankAlignmentTolerance || abs(hip.Y-knee.Y) > plankAlignmentTolerance
		return landmarks(pose.LeftShoulder, pose.LeftHip, pose.LeftKnee), fired
	},
}

var plankHeadPosition = check{
	id:         CheckPlankHeadPosition,
	severity:   SeverityInfo,
	message:    "Head position could be better",
	suggestion: "Keep your head neutral, looking slightly ahead",
	deduction:  5,
	fire: func(m *measurement) ([]string, bool) {
		if !m.view.Has(pose.Nose, pose.LeftShoulder) {
			return nil, false
		}
		fired := m.view[pose.Nose].Y < m.view[pose.LeftShoulder].Y-plankHeadTolerance
		return landmarks(pose.Nose, pose.LeftShoulder), fired
	},
}

var lowVisibility = check{
	id:         CheckLowVisibility,
	severity:   SeverityWarning,
	message:    "Poor pose visibility",
	suggestion: "Try to be more visible to the camera",
	deduction:  20,
	fire: func(m *measurement) ([]string, bool) {
		mean, ok := pose.MeanVisibility(m.obs)
		if !ok {
			return nil, false
		}
		return nil, mean < minMeanVisibility
	},
}

var plankRules = &ruleSet{
	measure: func(m *measurement) {
		m.angles["body"] = m.view.Angle(pose.LeftShoulder, pose.LeftHip, pose.LeftKnee)
	},
	classify: func(_ *measurement) Phase {
		return PhaseHolding
	},
	checks: []check{
		plankHipAlignment,
		plankHeadPosition,
	},
}

// genericRules serve every type without a dedicated rule set. No phase tracking.
var genericRules = &ruleSet{
	measure: func(_ *measurement) {},
	classify: func(_ *measurement) Phase {
		return PhaseStart
	},
	checks: []check{
		lowVisibility,
	},
}
