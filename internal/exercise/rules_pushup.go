package exercise

import (
	"github.com/2beens/formcheck/internal/pose"
)

const (
	CheckPushupDepth           CheckID = "pushup.insufficient_depth"
	CheckPushupUnevenArms      CheckID = "pushup.uneven_arms"
	CheckPushupLeftElbowFlare  CheckID = "pushup.left_elbow_flare"
	CheckPushupRightElbowFlare CheckID = "pushup.right_elbow_flare"
	CheckPushupSaggingHips     CheckID = "pushup.sagging_hips"
)

const (
	pushupUpperAngle         = 170.0
	pushupLowerAngle         = 90.0
	pushupDepthAngle         = 110.0
	pushupAsymmetryTolerance = 20.0
	pushupFlareTolerance     = 0.15
	pushupSagTolerance       = 0.1
)

var (
	leftArmJoint  = []string{pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist}
	rightArmJoint = []string{pose.RightShoulder, pose.RightElbow, pose.RightWrist}
)

var pushupRules = &ruleSet{
	measure: func(m *measurement) {
		leftElbow := m.view.Angle(pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist)
		rightElbow := m.view.Angle(pose.RightShoulder, pose.RightElbow, pose.RightWrist)

		if elbow, ok := jointMean(m.view, leftArmJoint, rightArmJoint); ok {
			m.angles["elbow"] = elbow
		}
		m.angles["left_elbow"] = leftElbow
		m.angles["right_elbow"] = rightElbow
	},
	classify: func(m *measurement) Phase {
		elbow, ok := m.angles["elbow"]
		if !ok {
			return PhaseMoving
		}
		return thresholdPhase(elbow, pushupUpperAngle, pushupLowerAngle)
	},
	checks: []check{
		{
			id:         CheckPushupDepth,
			severity:   SeverityWarning,
			message:    "Push-up depth is insufficient",
			suggestion: "Lower your chest closer to the ground",
			deduction:  10,
			fire: func(m *measurement) ([]string, bool) {
				if !m.view.Has(leftArmJoint...) || !m.view.Has(rightArmJoint...) {
					return nil, false
				}
				return landmarks(pose.LeftElbow, pose.RightElbow), m.angle("elbow") > pushupDepthAngle
			},
		},
		{
			id:         CheckPushupUnevenArms,
			severity:   SeverityWarning,
			message:    "Arms are not moving evenly",
			suggestion: "Focus on keeping both arms moving at the same pace",
			deduction:  5,
			fire: func(m *measurement) ([]string, bool) {
				if !m.view.Has(leftArmJoint...) || !m.view.Has(rightArmJoint...) {
					return nil, false
				}
				fired := abs(m.angle("left_elbow")-m.angle("right_elbow")) > pushupAsymmetryTolerance
				return landmarks(pose.LeftElbow, pose.RightElbow), fired
			},
		},
		elbowFlareCheck(CheckPushupLeftElbowFlare, "Left", leftArmJoint),
		elbowFlareCheck(CheckPushupRightElbowFlare, "Right", rightArmJoint),
		{
			id:         CheckPushupSaggingHips,
			severity:   SeverityCritical,
			message:    "Hips are sagging",
			suggestion: "Engage your core to keep your body in a straight line",
			deduction:  25,
			fire: func(m *measurement) ([]string, bool) {
				shoulder, hip := pose.LeftShoulder, pose.LeftHip
				if !m.view.Has(shoulder, hip) {
					shoulder, hip = pose.RightShoulder, pose.RightHip
				}
				if !m.view.Has(shoulder, hip) {
					return nil, false
				}
				fired := m.view[hip].Y > m.view[shoulder].Y+pushupSagTolerance
				return landmarks(shoulder, hip), fired
			},
		},
	},
}

// elbowFlareCheck builds the per-side flare rule; joint is shoulder, elbow, wrist.
func elbowFlareCheck(id CheckID, side string, joint []string) check {
	return check{
		id:         id,
		severity:   SeverityWarning,
		message:    side + " elbow is flaring out",
		suggestion: "Keep elbows at about 45 degrees from your body",
		deduction:  10,
		fire: func(m *measurement) ([]string, bool) {
			if !m.view.Has(joint...) {
				return nil, false
			}
			shoulder, elbow := m.view[joint[0]], m.view[joint[1]]
			return landmarks(joint...), abs(elbow.X-shoulder.X) > pushupFlareTolerance
		},
	}
}
