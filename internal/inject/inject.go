package inject

import "github.com/petems/snapclick/internal/scheme"

// Point is a screen position in global display coordinates.
type Point struct {
	X, Y int
}

// Phase is one half of a click.
type Phase int

const (
	Press Phase = iota
	Release
)

func (p Phase) String() string {
	if p == Release {
		return "release"
	}
	return "press"
}

// Pointer defines the interface for synthetic pointer input
type Pointer interface {
	// Position samples the live pointer location. ok is false when the
	// platform cannot report it.
	Position() (pt Point, ok bool)
	// Post emits one button event at pt.
	Post(button scheme.Button, phase Phase, pt Point) error
}
