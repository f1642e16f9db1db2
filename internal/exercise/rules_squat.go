package exercise

import (
	"github.com/2beens/formcheck/internal/pose"
)

const (
	CheckSquatDepth       CheckID = "squat.insufficient_depth"
	CheckSquatUnevenKnees CheckID = "squat.uneven_knees"
	CheckSquatUnevenHips  CheckID = "squat.uneven_hips"
	CheckSquatLeftValgus  CheckID = "squat.left_knee_valgus"
	CheckSquatRightValgus CheckID = "squat.right_knee_valgus"
	CheckSquatForwardLean CheckID = "squat.forward_lean"
)

const (
	squatUpperAngle          = 170.0
	squatLowerAngle          = 70.0
	squatDepthAngle          = 100.0
	squatAsymmetryTolerance  = 20.0
	squatValgusTolerance     = 0.05
	squatForwardLeanHipAngle = 60.0
)

var (
	leftKneeJoint  = []string{pose.LeftHip, pose.LeftKnee, pose.LeftAnkle}
	rightKneeJoint = []string{pose.RightHip, pose.RightKnee, pose.RightAnkle}
	leftHipJoint   = []string{pose.LeftShoulder, pose.LeftHip, pose.LeftKnee}
	rightHipJoint  = []string{pose.RightShoulder, pose.RightHip, pose.RightKnee}
)

var squatRules = &ruleSet{
	measure: func(m *measurement) {
		leftKnee := m.view.Angle(pose.LeftHip, pose.LeftKnee, pose.LeftAnkle)
		rightKnee := m.view.Angle(pose.RightHip, pose.RightKnee, pose.RightAnkle)
		leftHip := m.view.Angle(pose.LeftShoulder, pose.LeftHip, pose.LeftKnee)
		rightHip := m.view.Angle(pose.RightShoulder, pose.RightHip, pose.RightKnee)

		if knee, ok := jointMean(m.view, leftKneeJoint, rightKneeJoint); ok {
			m.angles["knee"] = knee
		}
		if hip, ok := jointMean(m.view, leftHipJoint, rightHipJoint); ok {
			m.angles["hip"] = hip
		}
		m.angles["left_knee"] = leftKnee
		m.angles["right_knee"] = rightKnee
		m.angles["left_hip"] = leftHip
		m.angles["right_hip"] = rightHip
	},
	// only the knee drives the phase; without a complete leg the frame is Moving
	classify: func(m *measurement) Phase {
		knee, ok := m.angles["knee"]
		if !ok {
			return PhaseMoving
		}
		return thresholdPhase(knee, squatUpperAngle, squatLowerAngle)
	},
	checks: []check{
		{
			id:         CheckSquatDepth,
			severity:   SeverityWarning,
			message:    "Squat depth is insufficient",
			suggestion: "Try to go lower - aim for thighs parallel to the ground",
			deduction:  10,
			fire: func(m *measurement) ([]string, bool) {
				if !bothJoints(m.view) {
					return nil, false
				}
				fired := m.angle("knee") > squatDepthAngle && m.angle("hip") > squatDepthAngle
				return landmarks(pose.LeftKnee, pose.RightKnee, pose.LeftHip, pose.RightHip), fired
			},
		},
		{
			id:         CheckSquatUnevenKnees,
			severity:   SeverityWarning,
			message:    "Knees are not tracking evenly",
			suggestion: "Focus on keeping both knees moving at the same pace",
			deduction:  5,
			fire: func(m *measurement) ([]string, bool) {
				if !m.view.Has(leftKneeJoint...) || !m.view.Has(rightKneeJoint...) {
					return nil, false
				}
				fired := abs(m.angle("left_knee")-m.angle("right_knee")) > squatAsymmetryTolerance
				return landmarks(pose.LeftKnee, pose.RightKnee), fired
			},
		},
		{
			id:         CheckSquatUnevenHips,
			severity:   SeverityWarning,
			message:    "Hips are not level",
			suggestion: "Keep your hips level throughout the movement",
			deduction:  5,
			fire: func(m *measurement) ([]string, bool) {
				if !m.view.Has(leftHipJoint...) || !m.view.Has(rightHipJoint...) {
					return nil, false
				}
				fired := abs(m.angle("left_hip")-m.angle("right_hip")) > squatAsymmetryTolerance
				return landmarks(pose.LeftHip, pose.RightHip), fired
			},
		},
		{
			id:         CheckSquatLeftValgus,
			severity:   SeverityCritical,
			message:    "Left knee is caving inward (valgus)",
			suggestion: "Push your knees out to track over your toes",
			deduction:  20,
			fire: func(m *measurement) ([]string, bool) {
				if !m.view.Has(pose.LeftKnee, pose.LeftAnkle) {
					return nil, false
				}
				fired := m.view[pose.LeftKnee].X < m.view[pose.LeftAnkle].X-squatValgusTolerance
				return landmarks(pose.LeftKnee, pose.LeftAnkle), fired
			},
		},
		{
			id:         CheckSquatRightValgus,
			severity:   SeverityCritical,
			message:    "Right knee is caving inward (valgus)",
			suggestion: "Push your knees out to track over your toes",
			deduction:  20,
			fire: func(m *measurement) ([]string, bool) {
				if !m.view.Has(pose.RightKnee, pose.RightAnkle) {
					return nil, false
				}
				fired := m.view[pose.RightKnee].X > m.view[pose.RightAnkle].X+squatValgusTolerance
				return landmarks(pose.RightKnee, pose.RightAnkle), fired
			},
		},
		{
			id:         CheckSquatForwardLean,
			severity:   SeverityWarning,
			message:    "Excessive forward lean",
			suggestion: "Keep your chest up and maintain a more upright torso",
			deduction:  10,
			fire: func(m *measurement) ([]string, bool) {
				if !m.view.Has(leftHipJoint...) || !m.view.Has(rightHipJoint...) {
					return nil, false
				}
				return landmarks(pose.LeftShoulder, pose.LeftHip), m.angle("hip") < squatForwardLeanHipAngle
			},
		},
	},
}

func bothJoints(view pose.KeypointView) bool {
	return view.Has(leftKneeJoint...) &&
		view.Has(rightKneeJoint...) &&
		view.Has(leftHipJoint...) &&
		view.Has(rightHipJoint...)
}
