//go:build !linux && !darwin

package notify

import "github.com/rs/zerolog"

// NewPlatformBackend returns the log backend; there is no native
// notification binding on this platform.
func NewPlatformBackend(log zerolog.Logger) Backend {
	return LogBackend{Log: log}
}
