package exercise

import "time"

// RepCounter counts repetitions from a stream of phases.
// A rep is counted when End is reached after Start was observed; Moving frames
// in between do not matter. Returning to Start arms the counter for the next rep.
// A set that begins at the bottom (End) is not counted until a Start is seen.
type RepCounter struct {
	exerciseType     Type
	count            int
	phase            Phase
	armed            bool
	lastTransitionAt time.Time
	now              func() time.Time
}

func NewRepCounter(exerciseType Type, now func() time.Time) *RepCounter {
	if now == nil {
		now = time.Now
	}
	return &RepCounter{
		exerciseType: exerciseType,
		phase:        PhaseStart,
		now:          now,
	}
}

// Update feeds the next observed phase and returns the current rep count.
func (c *RepCounter) Update(phase Phase) int {
	if phase == PhaseStart {
		c.armed = true
	}

	if phase == c.phase {
		return c.count
	}

	if phase == PhaseEnd {
		if c.armed {
			c.count++
		}
		c.armed = false
	}

	c.phase = phase
	c.lastTransitionAt = c.now()

	return c.count
}

func (c *RepCounter) Reset() {
	c.count = 0
	c.phase = PhaseStart
	c.armed = false
	c.lastTransitionAt = time.Time{}
}

func (c *RepCounter) Count() int {
	return c.count
}

func (c *RepCounter) Phase() Phase {
	return c.phase
}

// LastTransitionAt is zero until the first phase change.
func (c *RepCounter) LastTransitionAt() time.Time {
	return c.lastTransitionAt
}

func (c *RepCounter) ExerciseType() Type {
	return c.exerciseType
}
