// Package scheme defines click schemes: which button to click, how many
// times, over how long, and the hotkey that fires them.
package scheme

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petems/snapclick/internal/hotkey"
)

const (
	// MaxClicksPerSecond caps ClickCount/TotalDuration.
	MaxClicksPerSecond = 200
	// MaxDuration caps TotalDuration, in seconds.
	MaxDuration = 60.0
)

var (
	ErrInvalidClickCount = errors.New("scheme: click count must be at least 1")
	ErrInvalidDuration   = errors.New("scheme: total duration must be positive")
	ErrTooFast           = errors.New("scheme: more than 200 clicks per second")
	ErrTooLong           = errors.New("scheme: total duration exceeds 60 seconds")
)

// Button is the pointer button a scheme clicks.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

func (b Button) String() string {
	if b == ButtonSecondary {
		return "right"
	}
	return "left"
}

func (b Button) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Button) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "left", "primary":
		*b = ButtonPrimary
	case "right", "secondary":
		*b = ButtonSecondary
	default:
		return fmt.Errorf("scheme: unknown button %q", text)
	}
	return nil
}

// Scheme is one user-defined click sequence.
type Scheme struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Button        Button             `json:"button"`
	ClickCount    int                `json:"click_count"`
	TotalDuration float64            `json:"total_duration"` // seconds
	Hotkey        hotkey.Combination `json:"hotkey"`
	Enabled       bool               `json:"enabled"`
}

// New creates a disabled scheme with a fresh identifier.
func New(name string, button Button, clickCount int, totalDuration float64, hk hotkey.Combination) Scheme {
	return Scheme{
		ID:            uuid.New(),
		Name:          name,
		Button:        button,
		ClickCount:    clickCount,
		TotalDuration: totalDuration,
		Hotkey:        hk,
	}
}

// Interval is the gap between consecutive clicks.
func (s Scheme) Interval() time.Duration {
	if s.ClickCount <= 1 {
		return 0
	}
	return time.Duration(s.TotalDuration / float64(s.ClickCount) * float64(time.Second))
}

// ClicksPerSecond is the scheme's click rate.
func (s Scheme) ClicksPerSecond() float64 {
	if s.TotalDuration <= 0 {
		return 0
	}
	return float64(s.ClickCount) / s.TotalDuration
}

// Validate is the acceptance check applied before a scheme is stored.
func (s Scheme) Validate() error {
	switch {
	case s.ClickCount < 1:
		return ErrInvalidClickCount
	case math.IsNaN(s.TotalDuration) || s.TotalDuration <= 0:
		return ErrInvalidDuration
	case s.TotalDuration > MaxDuration:
		return ErrTooLong
	case s.ClicksPerSecond() > MaxClicksPerSecond:
		return ErrTooFast
	}
	return nil
}

// Summary renders "Left Click x10 - 10x/1.0s".
func (s Scheme) Summary() string {
	return fmt.Sprintf("%s - %dx/%.1fs", s.Name, s.ClickCount, s.TotalDuration)
}

// Defaults are the presets seeded into an empty store.
func Defaults() []Scheme {
	return []Scheme{
		New("Left Click x10", ButtonPrimary, 10, 1.0, hotkey.MustParse("Option+`")),
		New("Right Click x10", ButtonSecondary, 10, 1.0, hotkey.MustParse("Option+1")),
	}
}

// Enabled returns the enabled schemes in order.
func Enabled(schemes []Scheme) []Scheme {
	var out []Scheme
	for _, s := range schemes {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// IndexOf returns the position of the scheme with the given id, or -1.
func IndexOf(schemes []Scheme, id uuid.UUID) int {
	for i, s := range schemes {
		if s.ID == id {
			return i
		}
	}
	return -1
}
