// Package app coordinates the scheme set, the key interceptor and the click
// engine: it owns the Stopped/Running/Paused lifecycle and turns matches
// into click sequences.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petems/snapclick/internal/hotkey"
	"github.com/petems/snapclick/internal/intercept"
	"github.com/petems/snapclick/internal/notify"
	"github.com/petems/snapclick/internal/scheme"
	"github.com/petems/snapclick/internal/store"
)

type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

var (
	ErrNoEnabledSchemes  = errors.New("app: no enabled schemes")
	ErrHotkeyRequired    = errors.New("app: set a hotkey before enabling the scheme")
	ErrSchemeNotFound    = errors.New("app: scheme not found")
	ErrCaptureInProgress = intercept.ErrCaptureInProgress
)

// Interceptor is the subset of *intercept.Interceptor the coordinator uses.
type Interceptor interface {
	Start() error
	Stop()
	Bind(r *intercept.Registry)
	Matches() <-chan intercept.Match
	Disabled() <-chan uint64
	Epoch() uint64
	Dropped() uint64
	CaptureNext(ctx context.Context) (hotkey.Combination, error)
}

// Executor runs click sequences. Execute must not block.
type Executor interface {
	Execute(s scheme.Scheme)
	Cancel()
}

// SchemeStore persists the scheme list. Reload picks up edits made to the
// backing file by other processes and reports whether anything changed.
type SchemeStore interface {
	LoadAll() []scheme.Scheme
	Reload() (bool, error)
	Add(s scheme.Scheme) error
	UpdateAt(index int, s scheme.Scheme) error
	DeleteAt(index int) bool
}

// StatusUpdater is an interface for reflecting state (e.g., tray icon).
// It is called with the coordinator's lock held and must not call back.
type StatusUpdater interface {
	SetState(state State, enabled int)
	SetSchemes(schemes []scheme.Scheme)
}

type Config struct {
	Interceptor   Interceptor
	Executor      Executor
	Store         SchemeStore
	Notifier      notify.Sink   // Optional - can be nil
	StatusUpdater StatusUpdater // Optional - can be nil
	Logger        zerolog.Logger
}

type App struct {
	icpt   Interceptor
	exec   Executor
	store  SchemeStore
	notify notify.Sink
	status StatusUpdater
	log    zerolog.Logger

	mu         sync.Mutex
	state      State
	schemes    []scheme.Scheme
	generation uint64
	registry   *intercept.Registry // published registry, nil unless Running
	capturing  bool
	dropped    uint64 // last Dropped() value reported
	// permissionNotified suppresses repeated permission notifications
	// until a start succeeds.
	permissionNotified bool
}

func New(cfg Config) *App {
	a := &App{
		icpt:    cfg.Interceptor,
		exec:    cfg.Executor,
		store:   cfg.Store,
		notify:  cfg.Notifier,
		status:  cfg.StatusUpdater,
		log:     cfg.Logger,
		schemes: cfg.Store.LoadAll(),
	}
	if a.notify == nil {
		a.notify = nopSink{}
	}
	a.log.Info().Int("schemes", len(a.schemes)).Int("enabled", len(scheme.Enabled(a.schemes))).Msg("Loaded scheme set")
	a.publishLocked()
	return a
}

// Start begins monitoring the enabled schemes' hotkeys. With no enabled
// schemes it stays Stopped and returns ErrNoEnabledSchemes.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startLocked(true)
}

// AutoStart starts monitoring if anything is enabled.
func (a *App) AutoStart() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(scheme.Enabled(a.schemes)) == 0 {
		a.log.Info().Msg("No enabled schemes, not starting monitoring")
		return nil
	}
	return a.startLocked(true)
}

func (a *App) startLocked(announce bool) error {
	switch a.state {
	case Running:
		return nil
	case Paused:
		// Monitoring resumes when the capture finishes.
		return nil
	}

	if a.capturing {
		// The capture owns the tap; start once it is done.
		a.setStateLocked(Paused)
		return nil
	}

	if len(scheme.Enabled(a.schemes)) == 0 {
		a.log.Warn().Msg("No enabled schemes, staying stopped")
		a.setStateLocked(Stopped)
		return ErrNoEnabledSchemes
	}

	reg := a.buildRegistryLocked()
	a.icpt.Bind(reg)
	if err := a.icpt.Start(); err != nil {
		a.icpt.Bind(nil)
		a.setStateLocked(Stopped)
		a.log.Error().Err(err).Msg("Failed to start key monitoring")

		if errors.Is(err, intercept.ErrPermissionDenied) {
			if !a.permissionNotified {
				a.permissionNotified = true
				a.notify.Notify("Permission Required", "Grant input monitoring access, then start SnapClick again")
			}
		} else {
			a.notify.Notify("SnapClick Error", err.Error())
		}
		return err
	}

	a.permissionNotified = false
	a.registry = reg
	a.setStateLocked(Running)
	a.log.Info().Int("registered", reg.Len()).Uint64("generation", reg.Generation()).Msg("Monitoring started")
	if announce {
		a.notify.Notify("SnapClick Started", fmt.Sprintf("Loaded %d schemes", reg.Len()))
	}
	return nil
}

// Stop stops monitoring. Click sequences already running are not
// interrupted.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked(true)
}

func (a *App) stopLocked(announce bool) {
	if a.state == Stopped {
		return
	}

	a.unbindLocked()
	a.setStateLocked(Stopped)
	a.log.Info().Msg("Monitoring stopped")
	if announce {
		a.notify.Notify("SnapClick Stopped", "")
	}
}

// unbindLocked withdraws the registry before removing the tap so no match
// can be produced against it afterwards.
func (a *App) unbindLocked() {
	a.icpt.Bind(nil)
	a.icpt.Stop()
	a.registry = nil
}

// PauseForCapture suspends monitoring while a hotkey is being recorded.
// It only acts when Running.
func (a *App) PauseForCapture() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pauseLocked()
}

func (a *App) pauseLocked() {
	if a.state != Running {
		return
	}
	a.unbindLocked()
	a.setStateLocked(Paused)
	a.log.Debug().Msg("Monitoring paused")
}

// ResumeFromCapture restarts monitoring after PauseForCapture against the
// current scheme set. It only acts when Paused.
func (a *App) ResumeFromCapture() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resumeLocked()
}

func (a *App) resumeLocked() error {
	if a.state != Paused {
		return nil
	}
	a.state = Stopped
	err := a.startLocked(false)
	if errors.Is(err, ErrNoEnabledSchemes) {
		return nil
	}
	return err
}

// AddScheme validates and stores s.
func (a *App) AddScheme(s scheme.Scheme) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Enabled && !s.Hotkey.IsSet() {
		return ErrHotkeyRequired
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.syncLocked()

	if err := a.store.Add(s); err != nil {
		return err
	}
	a.log.Info().Str("scheme", s.Name).Msg("Added scheme")
	a.applyLocked(a.store.LoadAll())
	return nil
}

// UpdateScheme replaces the stored scheme with the same ID.
func (a *App) UpdateScheme(s scheme.Scheme) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Enabled && !s.Hotkey.IsSet() {
		return ErrHotkeyRequired
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.syncLocked()

	idx := scheme.IndexOf(a.schemes, s.ID)
	if idx < 0 {
		return ErrSchemeNotFound
	}
	for i, other := range a.schemes {
		if i != idx && other.Name == s.Name {
			return store.ErrDuplicateName
		}
	}

	if err := a.store.UpdateAt(idx, s); err != nil {
		return err
	}
	a.log.Info().Str("scheme", s.Name).Msg("Updated scheme")
	a.applyLocked(a.store.LoadAll())
	return nil
}

// DeleteScheme removes the scheme with the given ID.
func (a *App) DeleteScheme(id uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.syncLocked()

	idx := scheme.IndexOf(a.schemes, id)
	if idx < 0 {
		return ErrSchemeNotFound
	}
	if !a.store.DeleteAt(idx) {
		return fmt.Errorf("failed to delete scheme %q", a.schemes[idx].Name)
	}
	a.log.Info().Str("scheme", a.schemes[idx].Name).Msg("Deleted scheme")
	a.applyLocked(a.store.LoadAll())
	return nil
}

// ToggleScheme enables or disables one scheme. Enabling a scheme while
// Stopped starts monitoring.
func (a *App) ToggleScheme(id uuid.UUID, enabled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.syncLocked()

	idx := scheme.IndexOf(a.schemes, id)
	if idx < 0 {
		return ErrSchemeNotFound
	}
	s := a.schemes[idx]
	if s.Enabled == enabled {
		return nil
	}
	if enabled && !s.Hotkey.IsSet() {
		return ErrHotkeyRequired
	}

	s.Enabled = enabled
	if err := a.store.UpdateAt(idx, s); err != nil {
		return err
	}
	a.log.Info().Str("scheme", s.Name).Bool("enabled", enabled).Msg("Toggled scheme")
	a.applyLocked(a.store.LoadAll())

	if enabled && a.state == Stopped {
		return a.startLocked(true)
	}
	return nil
}

// EnableAll enables every scheme that has a hotkey.
func (a *App) EnableAll() error {
	return a.setAll(true)
}

// DisableAll disables every scheme, which stops monitoring.
func (a *App) DisableAll() error {
	return a.setAll(false)
}

func (a *App) setAll(enabled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.syncLocked()

	var errs []error
	for i, s := range a.schemes {
		if s.Enabled == enabled || (enabled && !s.Hotkey.IsSet()) {
			continue
		}
		s.Enabled = enabled
		if err := a.store.UpdateAt(i, s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	// Apply whatever was persisted, even after a partial failure.
	a.applyLocked(a.store.LoadAll())

	if enabled && a.state == Stopped && len(scheme.Enabled(a.schemes)) > 0 {
		errs = append(errs, a.startLocked(true))
	}
	return errors.Join(errs...)
}

// ReloadSchemes re-reads the scheme file, e.g. after it was edited by
// hand, and applies it if it changed.
func (a *App) ReloadSchemes() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	changed, err := a.store.Reload()
	if err != nil {
		return err
	}
	if changed {
		a.log.Info().Msg("Scheme file changed, reloading")
		a.applyLocked(a.store.LoadAll())
	}
	return nil
}

// syncLocked brings a.schemes in line with the store before an index is
// computed from it. Store indexes are only valid against the store's own
// list, and the file may have been edited since the last reload.
func (a *App) syncLocked() {
	if _, err := a.store.Reload(); err != nil {
		a.log.Warn().Err(err).Msg("Keeping current schemes, scheme file unreadable")
	}
	if current := a.store.LoadAll(); !slices.Equal(current, a.schemes) {
		a.log.Info().Msg("Scheme file changed, reloading")
		a.applyLocked(current)
	}
}

// RecordHotkey pauses monitoring, captures the next key combination and
// stores it on the scheme with the given ID, then resumes.
func (a *App) RecordHotkey(ctx context.Context, id uuid.UUID) (hotkey.Combination, error) {
	a.mu.Lock()
	if a.capturing {
		a.mu.Unlock()
		return hotkey.Combination{}, ErrCaptureInProgress
	}
	if scheme.IndexOf(a.schemes, id) < 0 {
		a.mu.Unlock()
		return hotkey.Combination{}, ErrSchemeNotFound
	}
	a.capturing = true
	a.pauseLocked()
	a.mu.Unlock()

	combo, err := a.icpt.CaptureNext(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.capturing = false

	if err == nil {
		err = a.assignHotkeyLocked(id, combo)
	}
	if rerr := a.resumeLocked(); rerr != nil && err == nil {
		err = rerr
	}
	if err != nil {
		return hotkey.Combination{}, err
	}
	return combo, nil
}

func (a *App) assignHotkeyLocked(id uuid.UUID, combo hotkey.Combination) error {
	a.syncLocked()
	idx := scheme.IndexOf(a.schemes, id)
	if idx < 0 {
		return ErrSchemeNotFound
	}
	s := a.schemes[idx]
	s.Hotkey = combo
	if err := a.store.UpdateAt(idx, s); err != nil {
		return err
	}
	a.log.Info().Str("scheme", s.Name).Str("hotkey", combo.String()).Msg("Recorded hotkey")
	a.applyLocked(a.store.LoadAll())
	return nil
}

// applyLocked installs next as the current scheme set and brings the
// published registry in line with it.
func (a *App) applyLocked(next []scheme.Scheme) {
	a.schemes = next
	a.generation++

	switch a.state {
	case Running:
		if len(scheme.Enabled(next)) == 0 {
			a.log.Info().Msg("Last scheme disabled")
			a.stopLocked(true)
			break
		}
		// Built off to the side and swapped in; the tap never sees a
		// half-built registry.
		reg := a.buildRegistryLocked()
		a.icpt.Bind(reg)
		a.registry = reg
		a.log.Debug().Int("registered", reg.Len()).Uint64("generation", reg.Generation()).Msg("Registry rebuilt")
	case Paused:
		// Rebuilt on resume.
	}
	a.publishLocked()
}

func (a *App) buildRegistryLocked() *intercept.Registry {
	reg := hotkey.NewRegistry[uuid.UUID](a.generation)
	for _, s := range scheme.Enabled(a.schemes) {
		if prev, ok := reg.Lookup(s.Hotkey); ok {
			a.log.Warn().
				Str("hotkey", s.Hotkey.String()).
				Str("scheme", s.Name).
				Str("replaces", prev.String()).
				Msg("Duplicate hotkey, later scheme wins")
		}
		if err := reg.Register(s.Hotkey, s.ID); err != nil {
			a.log.Warn().Err(err).Str("scheme", s.Name).Msg("Skipping scheme without hotkey")
		}
	}
	return reg
}

// Run dispatches matches until ctx is done.
func (a *App) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-a.icpt.Matches():
			a.dispatch(m)
		case epoch := <-a.icpt.Disabled():
			a.onDisabled(epoch)
		}
	}
}

func (a *App) dispatch(m intercept.Match) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := a.icpt.Dropped(); n != a.dropped {
		a.log.Warn().Uint64("dropped", n-a.dropped).Uint64("total", n).Msg("Match queue was full, hotkey presses lost")
		a.dropped = n
	}

	if a.state != Running || a.registry == nil {
		a.log.Debug().Str("hotkey", m.Combination.String()).Str("state", a.state.String()).Msg("Dropping match, not running")
		return
	}

	id := m.SchemeID
	if m.Generation != a.registry.Generation() {
		// Matched against a registry that has since been replaced.
		current, ok := a.registry.Lookup(m.Combination)
		if !ok {
			a.log.Debug().Str("hotkey", m.Combination.String()).Msg("Dropping stale match")
			return
		}
		id = current
	}

	idx := scheme.IndexOf(a.schemes, id)
	if idx < 0 || !a.schemes[idx].Enabled {
		a.log.Debug().Str("scheme_id", id.String()).Msg("Dropping match for missing or disabled scheme")
		return
	}

	s := a.schemes[idx]
	a.log.Info().Str("scheme", s.Name).Str("hotkey", m.Combination.String()).Msg("Hotkey fired")
	a.exec.Execute(s)
	a.notify.Notify("Executing", s.Summary())
}

func (a *App) onDisabled(epoch uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Running {
		return
	}
	if epoch != a.icpt.Epoch() {
		a.log.Debug().Uint64("epoch", epoch).Msg("Ignoring disable signal from an earlier tap")
		return
	}
	a.log.Warn().Msg("Key tap disabled by the system")
	a.unbindLocked()
	a.setStateLocked(Stopped)
	a.notify.Notify("SnapClick Stopped", "Keyboard monitoring was disabled by the system")
}

// Shutdown stops monitoring and cancels any running click sequence.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	a.stopLocked(false)
	a.mu.Unlock()

	a.exec.Cancel()
	return ctx.Err()
}

// Schemes returns a copy of the current scheme set.
func (a *App) Schemes() []scheme.Scheme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]scheme.Scheme(nil), a.schemes...)
}

func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// RegisteredCount is the number of combinations in the published registry.
func (a *App) RegisteredCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.registry == nil {
		return 0
	}
	return a.registry.Len()
}

func (a *App) setStateLocked(s State) {
	a.state = s
	if a.status != nil {
		a.status.SetState(s, len(scheme.Enabled(a.schemes)))
	}
}

func (a *App) publishLocked() {
	if a.status == nil {
		return
	}
	a.status.SetSchemes(append([]scheme.Scheme(nil), a.schemes...))
	a.status.SetState(a.state, len(scheme.Enabled(a.schemes)))
}

type nopSink struct{}

func (nopSink) Notify(string, string) {}
