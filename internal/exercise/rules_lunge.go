package exercise

import (
	"github.com/2beens/formcheck/internal/pose"
)

const (
	CheckLungeDepth        CheckID = "lunge.insufficient_depth"
	CheckLungeKneePastToe  CheckID = "lunge.knee_past_toe"
	CheckLungeBackKneeBend CheckID = "lunge.back_knee_underbent"
)

const (
	lungeUpperAngle        = 170.0
	lungeLowerAngle        = 80.0
	lungeDepthAngle        = 100.0
	lungeBackKneeMaxAngle  = 160.0
	lungeKneeOverTolerance = 0.05
)

const (
	legLeft  = "left"
	legRight = "right"
)

func otherLeg(leg string) string {
	if leg == legLeft {
		return legRight
	}
	return legLeft
}

func legJoint(leg string) []string {
	return []string{leg + "_hip", leg + "_knee", leg + "_ankle"}
}

var lungeRules = &ruleSet{
	// the knee higher up in the image (lower y) is taken as the front leg;
	// an absent knee reads as y=0
	measure: func(m *measurement) {
		leftKneeY := m.view[pose.LeftKnee].Y
		rightKneeY := m.view[pose.RightKnee].Y

		m.frontLeg = legRight
		if leftKneeY < rightKneeY {
			m.frontLeg = legLeft
		}

		front := legJoint(m.frontLeg)
		back := legJoint(otherLeg(m.frontLeg))
		m.angles["front_knee"] = m.view.Angle(front[0], front[1], front[2])
		m.angles["back_knee"] = m.view.Angle(back[0], back[1], back[2])
	},
	classify: func(m *measurement) Phase {
		return thresholdPhase(m.angle("front_knee"), lungeUpperAngle, lungeLowerAngle)
	},
	checks: []check{
		{
			id:         CheckLungeDepth,
			severity:   SeverityWarning,
			message:    "Lunge depth is insufficient",
			suggestion: "Step deeper into the lunge",
			deduction:  10,
			fire: func(m *measurement) ([]string, bool) {
				if !m.view.Has(legJoint(m.frontLeg)...) {
					return nil, false
				}
				return landmarks(m.frontLeg + "_knee"), m.angle("front_knee") > lungeDepthAngle
			},
		},
		{
			id:         CheckLungeKneePastToe,
			severity:   SeverityWarning,
			message:    "Front knee is going too far past toes",
			suggestion: "Keep your front knee above your ankle",
			deduction:  15,
			fire: func(m *measurement) ([]string, bool) {
				knee, ankle := m.frontLeg+"_knee", m.frontLeg+"_ankle"
				if !m.view.Has(knee, ankle) {
					return nil, false
				}
				fired := m.view[knee].Y < m.view[ankle].Y-lungeKneeOverTolerance
				return landmarks(knee, ankle), fired
			},
		},
		{
			id:         CheckLungeBackKneeBend,
			severity:   SeverityWarning,
			message:    "Back knee is not bending enough",
			suggestion: "Bend your back knee more for better stretch",
			deduction:  5,
			fire: func(m *measurement) ([]string, bool) {
				backLeg := otherLeg(m.frontLeg)
				if !m.view.Has(legJoint(backLeg)...) {
					return nil, false
				}
				return landmarks(backLeg + "_knee"), m.angle("back_knee") > lungeBackKneeMaxAngle
			},
		},
	},
}
