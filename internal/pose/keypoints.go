package pose

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// epsilon keeps the angle computation finite when two landmarks coincide
const epsilon = 1e-6

type Point struct {
	X float64
	Y float64
}

// KeypointView maps landmark names to their 2D position.
// Absent landmarks are simply not keys.
type KeypointView map[string]Point

func NewKeypointView(obs Observation) KeypointView {
	view := make(KeypointView, len(obs.Landmarks))
	for _, lm := range obs.Landmarks {
		if lm.Name == "" {
			continue
		}
		view[lm.Name] = Point{X: lm.X, Y: lm.Y}
	}
	return view
}

func (v KeypointView) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := v[name]; !ok {
			return false
		}
	}
	return true
}

// Angle returns the angle in degrees at p2 formed by p1-p2-p3.
// Returns 0 if any of the landmarks is absent.
func (v KeypointView) Angle(p1, p2, p3 string) float64 {
	a, okA := v[p1]
	b, okB := v[p2]
	c, okC := v[p3]
	if !okA || !okB || !okC {
		return 0
	}
	return Angle(a, b, c)
}

// Distance returns the planar distance between two landmarks, 0 if any is absent.
func (v KeypointView) Distance(p1, p2 string) float64 {
	a, okA := v[p1]
	b, okB := v[p2]
	if !okA || !okB {
		return 0
	}
	return Distance(a, b)
}

// Angle computes the angle at vertex b in degrees, in range [0, 180].
func Angle(a, b, c Point) float64 {
	v1x, v1y := a.X-b.X, a.Y-b.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y

	dot := v1x*v2x + v1y*v2y
	norms := math.Hypot(v1x, v1y)*math.Hypot(v2x, v2y) + epsilon

	cos := dot / norms
	// float error can push the ratio slightly out of acos domain
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// MeanVisibility returns the mean visibility score over all landmarks,
// and false when there are none.
func MeanVisibility(obs Observation) (float64, bool) {
	if len(obs.Landmarks) == 0 {
		return 0, false
	}
	visibilities := make([]float64, 0, len(obs.Landmarks))
	for _, lm := range obs.Landmarks {
		visibilities = append(visibilities, lm.Visibility)
	}
	return stat.Mean(visibilities, nil), true
}
