// Package gesture recognizes the edge-swipe that reveals the navigation
// panel.
//
// The recognizer is a pure decision over a completed touch record: no
// state is carried between gestures, and it knows nothing about rendering
// or event plumbing.
package gesture

const (
	// EdgeZone is how far from the left screen edge a touch may start and
	// still be tracked, in pixels.
	EdgeZone = 30

	// MinHorizontal is the rightward displacement required to fire.
	MinHorizontal = 50

	// MaxVertical is the vertical drift above which the swipe is ignored.
	MaxVertical = 100
)

// Point is a touch position in screen pixels.
type Point struct {
	X float64
	Y float64
}

// Touch is the three-point record of one completed touch: where it
// started, the last position observed while tracking, and where it was
// released.
type Touch struct {
	Start Point
	Last  Point
	End   Point
}

// Reveal reports whether the touch is a left-edge swipe that should
// reveal the panel. enabled is supplied by the caller and is false while
// the panel is already open, disabling recognition entirely.
func Reveal(t Touch, enabled bool) bool {
	if !enabled {
		return false
	}
	if t.Start.X > EdgeZone {
		return false
	}
	dx := t.End.X - t.Start.X
	dy := t.End.Y - t.Start.Y
	if dy < 0 {
		dy = -dy
	}
	return dx > MinHorizontal && dy < MaxVertical
}
