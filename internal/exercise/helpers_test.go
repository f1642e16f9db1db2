package exercise_test

import (
	"math"
	"time"

	"github.com/2beens/formcheck/internal/pose"
)

const segment = 0.2

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func lm(name string, x, y float64) pose.Landmark {
	return pose.Landmark{Name: name, X: x, Y: y, Visibility: 0.9}
}

// squatPose builds a symmetric lower body where both knees bend to kneeAngle
// and both hips to hipAngle. Ankles and shoulders open outwards.
func squatPose(kneeAngle, hipAngle float64) pose.Observation {
	return squatPoseSides(kneeAngle, kneeAngle, hipAngle, hipAngle)
}

// squatPoseSides is squatPose with each side bent on its own.
func squatPoseSides(leftKneeAngle, rightKneeAngle, leftHipAngle, rightHipAngle float64) pose.Observation {
	leftKnee := pose.Point{X: 0.45, Y: 0.7}
	rightKnee := pose.Point{X: 0.55, Y: 0.7}
	leftHip := pose.Point{X: leftKnee.X, Y: leftKnee.Y - segment}
	rightHip := pose.Point{X: rightKnee.X, Y: rightKnee.Y - segment}

	lk, rk := rad(leftKneeAngle), rad(rightKneeAngle)
	lh, rh := rad(leftHipAngle), rad(rightHipAngle)

	return pose.Observation{
		Confidence: 0.9,
		Landmarks: []pose.Landmark{
			lm(pose.Nose, 0.5, 0.1),
			lm(pose.LeftShoulder, leftHip.X+segment*math.Sin(lh), leftHip.Y+segment*math.Cos(lh)),
			lm(pose.RightShoulder, rightHip.X-segment*math.Sin(rh), rightHip.Y+segment*math.Cos(rh)),
			lm(pose.LeftHip, leftHip.X, leftHip.Y),
			lm(pose.RightHip, rightHip.X, rightHip.Y),
			lm(pose.LeftKnee, leftKnee.X, leftKnee.Y),
			lm(pose.RightKnee, rightKnee.X, rightKnee.Y),
			lm(pose.LeftAnkle, leftKnee.X-segment*math.Sin(lk), leftKnee.Y-segment*math.Cos(lk)),
			lm(pose.RightAnkle, rightKnee.X+segment*math.Sin(rk), rightKnee.Y-segment*math.Cos(rk)),
		},
	}
}

func without(obs pose.Observation, names ...string) pose.Observation {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := pose.Observation{Confidence: obs.Confidence}
	for _, l := range obs.Landmarks {
		if !drop[l.Name] {
			out.Landmarks = append(out.Landmarks, l)
		}
	}
	return out
}

func with(obs pose.Observation, name string, x, y float64) pose.Observation {
	out := without(obs, name)
	out.Landmarks = append(out.Landmarks, lm(name, x, y))
	return out
}

// stepClock advances by step on every call, starting at start.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}
