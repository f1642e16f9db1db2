package exercise

import (
	"time"

	"github.com/2beens/formcheck/internal/pose"
)

// Batch checks are coarser than the streaming ones and only look at the left side.
// Both sets are kept independent; their deductions are not meant to agree.
const (
	CheckBatchSquatKneeForward    CheckID = "batch.squat.knee_forward"
	CheckBatchSquatBackAlignment  CheckID = "batch.squat.back_alignment"
	CheckBatchSquatDepth          CheckID = "batch.squat.depth"
	CheckBatchPushupBodyAlignment CheckID = "batch.pushup.body_alignment"
	CheckBatchPushupElbowTuck     CheckID = "batch.pushup.elbow_tuck"
	CheckBatchLungeKneePastAnkle  CheckID = "batch.lunge.knee_past_ankle"
	CheckBatchLungeTorsoUpright   CheckID = "batch.lunge.torso_upright"
)

var batchRules = map[Type]*ruleSet{
	TypeSquat: {
		checks: []check{
			{
				id:         CheckBatchSquatKneeForward,
				severity:   SeverityWarning,
				message:    "Knees extending too far forward",
				suggestion: "Keep your knees behind your toes, push hips back more",
				deduction:  15,
				fire: func(m *measurement) ([]string, bool) {
					if !m.view.Has(pose.LeftKnee, pose.LeftAnkle) {
						return nil, false
					}
					fired := m.view[pose.LeftKnee].Y > m.view[pose.LeftAnkle].Y-0.1
					return landmarks(pose.LeftKnee, pose.LeftAnkle), fired
				},
			},
			{
				id:         CheckBatchSquatBackAlignment,
				severity:   SeverityWarning,
				message:    "Back not properly aligned",
				suggestion: "Keep your chest up and maintain neutral spine",
				deduction:  10,
				fire: func(m *measurement) ([]string, bool) {
					if !m.view.Has(pose.LeftShoulder, pose.LeftHip) {
						return nil, false
					}
					fired := abs(m.view[pose.LeftShoulder].X-m.view[pose.LeftHip].X) > 0.15
					return landmarks(pose.LeftShoulder, pose.LeftHip), fired
				},
			},
			{
				id:         CheckBatchSquatDepth,
				severity:   SeverityInfo,
				message:    "Squat depth could be improved",
				suggestion: "Try to squat deeper, aim for thighs parallel to ground",
				deduction:  5,
				fire: func(m *measurement) ([]string, bool) {
					if !m.view.Has(pose.LeftHip, pose.LeftKnee) {
						return nil, false
					}
					fired := abs(m.view[pose.LeftHip].Y-m.view[pose.LeftKnee].Y) > 0.3
					return landmarks(pose.LeftHip, pose.LeftKnee), fired
				},
			},
		},
	},
	TypePushup: {
		checks: []check{
			{
				id:         CheckBatchPushupBodyAlignment,
				severity:   SeverityCritical,
				message:    "Body not in straight line",
				suggestion: "Keep your body straight from head to heels, engage your core",
				deduction:  25,
				fire: func(m *measurement) ([]string, bool) {
					if !m.view.Has(pose.LeftShoulder, pose.LeftHip) {
						return nil, false
					}
					fired := abs(m.view[pose.LeftShoulder].Y-m.view[pose.LeftHip].Y) > 0.2
					return landmarks(pose.LeftShoulder, pose.LeftHip), fired
				},
			},
			{
				id:         CheckBatchPushupElbowTuck,
				severity:   SeverityWarning,
				message:    "Elbows flaring out too much",
				suggestion: "Keep elbows closer to your body, about 45 degrees",
				deduction:  10,
				fire: func(m *measurement) ([]string, bool) {
					shoulder, ok := m.obs.Landmark(pose.LeftShoulder)
					if !ok {
						return nil, false
					}
					return landmarks(pose.LeftShoulder, pose.LeftElbow), shoulder.Z > 0.1
				},
			},
		},
	},
	TypeLunge: {
		checks: []check{
			{
				id:         CheckBatchLungeKneePastAnkle,
				severity:   SeverityWarning,
				message:    "Front knee extending past ankle",
				suggestion: "Keep your front knee directly above your ankle",
				deduction:  15,
				fire: func(m *measurement) ([]string, bool) {
					if !m.view.Has(pose.LeftKnee, pose.LeftAnkle) {
						return nil, false
					}
					fired := m.view[pose.LeftKnee].Y < m.view[pose.LeftAnkle].Y-0.05
					return landmarks(pose.LeftKnee, pose.LeftAnkle), fired
				},
			},
			{
				id:         CheckBatchLungeTorsoUpright,
				severity:   SeverityInfo,
				message:    "Keep torso more upright",
				suggestion: "Maintain an upright posture throughout the movement",
				deduction:  5,
				fire: func(m *measurement) ([]string, bool) {
					if !m.view.Has(pose.LeftShoulder, pose.LeftHip) {
						return nil, false
					}
					fired := abs(m.view[pose.LeftShoulder].X-m.view[pose.LeftHip].X) > 0.1
					return landmarks(pose.LeftShoulder, pose.LeftHip), fired
				},
			},
		},
	},
	TypePlank: {
		checks: []check{
			plankHipAlignment,
			plankHeadPosition,
		},
	},
}

func batchRulesFor(t Type) *ruleSet {
	if rules, ok := batchRules[t]; ok {
		return rules
	}
	return genericRules
}

// EvaluateBatchFrame runs the batch rule set for one frame and returns the fired
// issues with the frame score. An empty observation is not analyzed and scores 0.
func EvaluateBatchFrame(t Type, obs pose.Observation, at time.Time) ([]FormIssue, float64) {
	if obs.IsEmpty() {
		return []FormIssue{}, MinFormScore
	}

	m := newMeasurement(obs)
	issues := runChecks(batchRulesFor(t).checks, m, at)

	return issues, Score(issues)
}
