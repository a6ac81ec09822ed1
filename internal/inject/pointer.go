package inject

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/petems/snapclick/internal/scheme"
)

type robotPointer struct{}

// New creates the platform pointer backed by robotgo.
func New() Pointer {
	return &robotPointer{}
}

func (p *robotPointer) Position() (Point, bool) {
	return platformPosition()
}

// Post moves to pt (a no-op when sampling just returned pt) and toggles
// the button there.
func (p *robotPointer) Post(button scheme.Button, phase Phase, pt Point) error {
	robotgo.Move(pt.X, pt.Y)

	dir := "down"
	if phase == Release {
		dir = "up"
	}
	if err := robotgo.Toggle(button.String(), dir); err != nil {
		return fmt.Errorf("failed to post %s %s: %w", button, phase, err)
	}
	return nil
}
