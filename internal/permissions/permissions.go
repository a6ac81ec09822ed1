// Package permissions checks whether the process may observe and post
// system-wide input events.
package permissions

import "sync/atomic"

// Checker reports input-capture permission, showing the system prompt at
// most once per process.
type Checker struct {
	prompt   bool
	prompted atomic.Bool
}

// NewChecker creates a Checker. With prompt set, the first denied check
// asks the OS to show its permission dialog.
func NewChecker(prompt bool) *Checker {
	return &Checker{prompt: prompt}
}

// HasInputCapturePermission reports whether the global key tap and
// synthetic pointer events are allowed.
func (c *Checker) HasInputCapturePermission() bool {
	if checkAccessibility(false) {
		return true
	}
	if c.prompt && c.prompted.CompareAndSwap(false, true) {
		return checkAccessibility(true)
	}
	return false
}
