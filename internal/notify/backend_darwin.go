//go:build darwin

package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

type osascriptBackend struct{}

// NewPlatformBackend returns a backend that posts through Notification
// Center via osascript.
func NewPlatformBackend(_ zerolog.Logger) Backend {
	return osascriptBackend{}
}

func (osascriptBackend) Send(ctx context.Context, title, message string) error {
	script := fmt.Sprintf("display notification %s with title %s", appleScriptString(message), appleScriptString(title))
	if out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
