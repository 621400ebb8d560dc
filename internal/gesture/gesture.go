package gesture

import "math"

type Action int

const (
	None Action = iota
	SwipeNext
	SwipePrev
)

func (a Action) String() string {
	switch a {
	case SwipeNext:
		return "next"
	case SwipePrev:
		return "prev"
	default:
		return "none"
	}
}

const DefaultThreshold = 40

// Recognizer turns a pointer track into a horizontal swipe. It is not safe
// for concurrent use.
type Recognizer struct {
	threshold float64

	tracking       bool
	startX, startY float64
	lastX, lastY   float64
}

func NewRecognizer(threshold float64) *Recognizer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Recognizer{threshold: threshold}
}

func (r *Recognizer) Start(x, y float64) {
	r.tracking = true
	r.startX, r.startY = x, y
	r.lastX, r.lastY = x, y
}

// Move records the pointer position and reports whether the platform's
// default scroll handling should be suppressed.
func (r *Recognizer) Move(x, y float64) bool {
	if !r.tracking {
		return false
	}
	r.lastX, r.lastY = x, y
	dx, dy := r.delta()
	return math.Abs(dx) > math.Abs(dy)
}

func (r *Recognizer) End() Action {
	if !r.tracking {
		return None
	}
	r.tracking = false

	dx, dy := r.delta()
	if math.Abs(dx) <= math.Abs(dy) || math.Abs(dx) <= r.threshold {
		return None
	}
	if dx < 0 {
		return SwipeNext
	}
	return SwipePrev
}

// EndAt is End with a final position, for platforms that report the
// release point separately.
func (r *Recognizer) EndAt(x, y float64) Action {
	if r.tracking {
		r.lastX, r.lastY = x, y
	}
	return r.End()
}

func (r *Recognizer) Cancel() {
	r.tracking = false
}

func (r *Recognizer) delta() (float64, float64) {
	return r.lastX - r.startX, r.lastY - r.startY
}
