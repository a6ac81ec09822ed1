//go:build !darwin

package intercept

import (
	"sync"
	"sync/atomic"

	hook "github.com/robotn/gohook"

	"github.com/petems/snapclick/internal/hotkey"
)

// libuiohook modifier mask bits as delivered in hook.Event.Mask.
const (
	maskShiftL = 1 << 0
	maskCtrlL  = 1 << 1
	maskMetaL  = 1 << 2
	maskAltL   = 1 << 3
	maskShiftR = 1 << 4
	maskCtrlR  = 1 << 5
	maskMetaR  = 1 << 6
	maskAltR   = 1 << 7
)

// Replaced in tests.
var (
	startEvents = hook.Start
	endEvents   = hook.End
)

type gohookTap struct {
	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	// Written by the event loop, which never takes mu.
	stopping atomic.Bool
	lost     atomic.Bool
}

// NewPlatformHook returns the gohook (libuiohook) binding. libuiohook only
// observes events, so matched keys still reach the focused application.
func NewPlatformHook() Hook {
	return &gohookTap{}
}

func (t *gohookTap) Start(handle func(KeyEvent) bool, disabled func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running && !t.lost.Load() {
		return nil
	}
	if t.running {
		// The previous loop has already returned.
		<-t.done
	}

	t.stopping.Store(false)
	t.lost.Store(false)
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	events := startEvents()
	go t.loop(events, handle, disabled, t.stop, t.done)

	t.running = true
	return nil
}

func (t *gohookTap) loop(events chan hook.Event, handle func(KeyEvent) bool, disabled func(), stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case hook.KeyHold: // libuiohook "key pressed"; KeyDown is "key typed"
				handle(KeyEvent{Code: ev.Keycode, Modifiers: modifiersFromMask(ev.Mask)})
			case hook.HookDisabled:
				if !t.stopping.Load() {
					t.lost.Store(true)
					disabled()
					return
				}
			}
		}
	}
}

// Stop waits for the event loop under mu. The loop never takes mu, so a
// HookDisabled racing with Stop cannot wedge it.
func (t *gohookTap) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	if !t.lost.Load() {
		t.stopping.Store(true)
		close(t.stop)
		endEvents()
	}
	<-t.done
	t.running = false
}

func modifiersFromMask(mask uint16) hotkey.Modifier {
	var m hotkey.Modifier
	if mask&(maskMetaL|maskMetaR) != 0 {
		m |= hotkey.ModCommand
	}
	if mask&(maskAltL|maskAltR) != 0 {
		m |= hotkey.ModOption
	}
	if mask&(maskCtrlL|maskCtrlR) != 0 {
		m |= hotkey.ModControl
	}
	if mask&(maskShiftL|maskShiftR) != 0 {
		m |= hotkey.ModShift
	}
	return m
}
