package pose

import "errors"

var ErrEmptyObservation = errors.New("pose observation has no landmarks")

// Landmark names, following the MediaPipe pose model numbering.
const (
	Nose           = "nose"
	LeftEyeInner   = "left_eye_inner"
	LeftEye        = "left_eye"
	LeftEyeOuter   = "left_eye_outer"
	RightEyeInner  = "right_eye_inner"
	RightEye       = "right_eye"
	RightEyeOuter  = "right_eye_outer"
	LeftEar        = "left_ear"
	RightEar       = "right_ear"
	MouthLeft      = "mouth_left"
	MouthRight     = "mouth_right"
	LeftShoulder   = "left_shoulder"
	RightShoulder  = "right_shoulder"
	LeftElbow      = "left_elbow"
	RightElbow     = "right_elbow"
	LeftWrist      = "left_wrist"
	RightWrist     = "right_wrist"
	LeftPinky      = "left_pinky"
	RightPinky     = "right_pinky"
	LeftIndex      = "left_index"
	RightIndex     = "right_index"
	LeftThumb      = "left_thumb"
	RightThumb     = "right_thumb"
	LeftHip        = "left_hip"
	RightHip       = "right_hip"
	LeftKnee       = "left_knee"
	RightKnee      = "right_knee"
	LeftAnkle      = "left_ankle"
	RightAnkle     = "right_ankle"
	LeftHeel       = "left_heel"
	RightHeel      = "right_heel"
	LeftFootIndex  = "left_foot_index"
	RightFootIndex = "right_foot_index"
)

// Names holds the landmark vocabulary indexed by model output position.
var Names = [...]string{
	Nose,
	LeftEyeInner, LeftEye, LeftEyeOuter,
	RightEyeInner, RightEye, RightEyeOuter,
	LeftEar, RightEar,
	MouthLeft, MouthRight,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftPinky, RightPinky,
	LeftIndex, RightIndex,
	LeftThumb, RightThumb,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
}

// NameAt returns the landmark name for a model output index.
func NameAt(idx int) (string, bool) {
	if idx < 0 || idx >= len(Names) {
		return "", false
	}
	return Names[idx], true
}

func IsKnownName(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Landmark is a single keypoint as produced by the pose estimator.
// Coordinates are normalized to [0, 1], origin top-left.
type Landmark struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Observation is one pose estimate for one subject in one frame.
type Observation struct {
	Landmarks  []Landmark `json:"landmarks"`
	Confidence float64    `json:"confidence"`
}

func (o Observation) IsEmpty() bool {
	return len(o.Landmarks) == 0
}

// Normalize fills in missing landmark names from their index.
// Estimators that only send indices are accepted this way.
func (o Observation) Normalize() Observation {
	landmarks := make([]Landmark, len(o.Landmarks))
	for i, lm := range o.Landmarks {
		if lm.Name == "" {
			if name, ok := NameAt(lm.ID); ok {
				lm.Name = name
			}
		}
		landmarks[i] = lm
	}
	return Observation{
		Landmarks:  landmarks,
		Confidence: o.Confidence,
	}
}

// Landmark returns the first landmark with the given name.
func (o Observation) Landmark(name string) (Landmark, bool) {
	for _, lm := range o.Landmarks {
		if lm.Name == name {
			return lm, true
		}
	}
	return Landmark{}, false
}
