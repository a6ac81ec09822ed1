// Package intercept owns the system-wide key tap and turns key presses that
// match a registered combination into Match messages.
package intercept

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petems/snapclick/internal/hotkey"
)

var (
	ErrPermissionDenied  = errors.New("intercept: input capture permission not granted")
	ErrCaptureInProgress = errors.New("intercept: a capture is already running")
)

// DefaultQueueSize is the number of matches that may wait for dispatch.
const DefaultQueueSize = 16

// Registry is the snapshot the tap consults: combination to scheme id.
type Registry = hotkey.Registry[uuid.UUID]

// Match is sent for every swallowed key press that hit the registry.
type Match struct {
	Combination hotkey.Combination
	SchemeID    uuid.UUID
	Generation  uint64 // generation of the registry that matched
	At          time.Time
}

// PermissionChecker reports whether the tap may be installed.
type PermissionChecker interface {
	HasInputCapturePermission() bool
}

type Config struct {
	Hook        Hook
	Permissions PermissionChecker // Optional - nil means granted
	Logger      zerolog.Logger
	QueueSize   int
}

// Interceptor wraps a Hook with registry lookup and non-blocking hand-off.
// One instance is created by the composition root and started and stopped
// many times.
type Interceptor struct {
	hook  Hook
	perms PermissionChecker
	log   zerolog.Logger

	// mu serializes Start and Stop; active is also cleared from the tap's
	// context when the platform disables it.
	mu     sync.Mutex
	active atomic.Bool

	registry atomic.Pointer[Registry]
	capture  atomic.Pointer[chan hotkey.Combination]

	// epoch counts installs; a disabled signal carries the epoch of the
	// tap that was lost.
	epoch    atomic.Uint64
	matches  chan Match
	disabled chan uint64
	dropped  atomic.Uint64
}

func New(cfg Config) *Interceptor {
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Interceptor{
		hook:     cfg.Hook,
		perms:    cfg.Permissions,
		log:      cfg.Logger,
		matches:  make(chan Match, size),
		disabled: make(chan uint64, 1),
	}
}

// Start installs the tap. It is a no-op when already active.
func (i *Interceptor) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.startLocked()
}

func (i *Interceptor) startLocked() error {
	if i.active.Load() {
		return nil
	}
	if i.perms != nil && !i.perms.HasInputCapturePermission() {
		return ErrPermissionDenied
	}
	epoch := i.epoch.Add(1)
	if err := i.hook.Start(i.handle, func() { i.onDisabled(epoch) }); err != nil {
		return fmt.Errorf("intercept: failed to install key tap: %w", err)
	}
	i.active.Store(true)
	i.log.Debug().Msg("Key tap installed")
	return nil
}

// Stop removes the tap. It is safe to call when not started.
func (i *Interceptor) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopLocked()
}

func (i *Interceptor) stopLocked() {
	if !i.active.Load() {
		return
	}
	i.hook.Stop()
	i.active.Store(false)
	i.log.Debug().Msg("Key tap removed")
}

// Active reports whether the tap is installed.
func (i *Interceptor) Active() bool {
	return i.active.Load()
}

// Bind publishes r as the snapshot the tap matches against. The caller
// must not modify r afterwards. nil unbinds.
func (i *Interceptor) Bind(r *Registry) {
	i.registry.Store(r)
}

// Bound returns the published snapshot.
func (i *Interceptor) Bound() *Registry {
	return i.registry.Load()
}

// Matches delivers matched key presses in arrival order.
func (i *Interceptor) Matches() <-chan Match {
	return i.matches
}

// Disabled receives the epoch of a tap the platform switched off. Only
// the most recent signal is kept.
func (i *Interceptor) Disabled() <-chan uint64 {
	return i.disabled
}

// Epoch identifies the current (or last) installed tap.
func (i *Interceptor) Epoch() uint64 {
	return i.epoch.Load()
}

// Dropped is the number of matches discarded because the queue was full.
func (i *Interceptor) Dropped() uint64 {
	return i.dropped.Load()
}

// CaptureNext swallows and returns the next non-modifier key press. The
// tap is installed for the duration of the capture if it was not already.
// Registered combinations do not fire while a capture is waiting.
func (i *Interceptor) CaptureNext(ctx context.Context) (hotkey.Combination, error) {
	ch := make(chan hotkey.Combination, 1)
	if !i.capture.CompareAndSwap(nil, &ch) {
		return hotkey.Combination{}, ErrCaptureInProgress
	}
	defer i.capture.Store(nil)

	i.mu.Lock()
	started := !i.active.Load()
	if err := i.startLocked(); err != nil {
		i.mu.Unlock()
		return hotkey.Combination{}, err
	}
	i.mu.Unlock()

	if started {
		defer i.Stop()
	}

	select {
	case c := <-ch:
		return c, nil
	case <-ctx.Done():
		return hotkey.Combination{}, ctx.Err()
	}
}

// handle runs on the tap's delivery context: no locks, no I/O, no
// blocking sends.
func (i *Interceptor) handle(ev KeyEvent) bool {
	if ch := i.capture.Load(); ch != nil {
		if hotkey.IsModifierKey(ev.Code) {
			return false
		}
		select {
		case *ch <- ev.Combination():
		default:
		}
		return true
	}

	reg := i.registry.Load()
	if reg == nil {
		return false
	}

	c := ev.Combination()
	id, ok := reg.Lookup(c)
	if !ok {
		return false
	}

	select {
	case i.matches <- Match{Combination: c, SchemeID: id, Generation: reg.Generation(), At: time.Now()}:
	default:
		i.dropped.Add(1)
	}
	return true
}

// onDisabled is called by the hook, after it has torn itself down, when
// the OS turned the tap off.
func (i *Interceptor) onDisabled(epoch uint64) {
	if epoch != i.epoch.Load() {
		return
	}
	i.active.CompareAndSwap(true, false)

	for {
		select {
		case i.disabled <- epoch:
			return
		default:
		}
		select {
		case <-i.disabled:
		default:
		}
	}
}
