package intercept

import "github.com/petems/snapclick/internal/hotkey"

// KeyEvent is a key press decoded from the platform tap.
type KeyEvent struct {
	Code      uint16
	Modifiers hotkey.Modifier
}

// Combination returns the matchable form of the event.
func (e KeyEvent) Combination() hotkey.Combination {
	return hotkey.Combination{KeyCode: e.Code, Modifiers: e.Modifiers}
}

// Hook is the platform binding for a system-wide key tap.
type Hook interface {
	// Start installs the tap. handle runs on the tap's delivery context for
	// every key press and reports whether the event should be swallowed; it
	// must return quickly. disabled is called if the platform turns the tap
	// off on its own.
	Start(handle func(KeyEvent) bool, disabled func()) error
	// Stop removes the tap. It is safe to call when not started.
	Stop()
}
