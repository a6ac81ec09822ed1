//go:build !darwin

package inject

import "github.com/go-vgo/robotgo"

func platformPosition() (Point, bool) {
	x, y := robotgo.Location()
	return Point{X: x, Y: y}, true
}
