package tray

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/getlantern/systray"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"

	"github.com/petems/snapclick/internal/app"
	"github.com/petems/snapclick/internal/config"
	"github.com/petems/snapclick/internal/logging"
	"github.com/petems/snapclick/internal/notify"
	"github.com/petems/snapclick/internal/scheme"
)

const recordTimeout = 10 * time.Second

type UI struct {
	app         *app.App
	cfg         *config.Config
	schemesPath string
	version     string
	commit      string
	notify      notify.Sink
	log         zerolog.Logger

	mu      sync.Mutex
	ready   bool
	state   app.State
	enabled int
	schemes []scheme.Scheme
	slots   []*schemeSlot

	// Menu items
	mStartStop *systray.MenuItem
	mSchemes   *systray.MenuItem
}

// schemeSlot is the submenu for the scheme at one position in the list.
// systray cannot remove items, so slots are reused and hidden when the
// list shrinks.
type schemeSlot struct {
	parent *systray.MenuItem
	toggle *systray.MenuItem
	record *systray.MenuItem
}

func New(application *app.App, cfg *config.Config, notifier notify.Sink, schemesPath, version, commit string) *UI {
	log := logging.NewWithLevel(cfg.LogLevel)
	return &UI{
		app:         application,
		cfg:         cfg,
		schemesPath: schemesPath,
		version:     version,
		commit:      commit,
		notify:      notifier,
		log:         log,
	}
}

// SetApp sets the app reference (for circular dependency resolution)
func (u *UI) SetApp(application *app.App) {
	u.app = application
}

// SetState implements app.StatusUpdater.
func (u *UI) SetState(state app.State, enabled int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.state = state
	u.enabled = enabled
	if u.ready {
		u.renderStateLocked()
	}
}

// SetSchemes implements app.StatusUpdater.
func (u *UI) SetSchemes(schemes []scheme.Scheme) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.schemes = schemes
	if u.ready {
		u.renderSchemesLocked()
	}
}

func (u *UI) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	systray.SetTooltip("Hotkey-triggered auto clicker")

	// Build menu
	u.mStartStop = systray.AddMenuItem("Start Monitoring", "Listen for scheme hotkeys")
	systray.AddSeparator()

	u.mSchemes = systray.AddMenuItem("Schemes", "Click schemes")
	mEnableAll := systray.AddMenuItem("Enable All", "Enable every scheme with a hotkey")
	mDisableAll := systray.AddMenuItem("Disable All", "Disable every scheme")
	mCopy := systray.AddMenuItem("Copy Hotkeys", "Copy the scheme list to the clipboard")

	systray.AddSeparator()
	mSchemesFile := systray.AddMenuItem("Open Schemes File", "Edit schemes by hand")
	mLogs := systray.AddMenuItem("Open Logs", "View application logs")
	mAbout := systray.AddMenuItem("About", "About SnapClick")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	u.mu.Lock()
	u.ready = true
	u.renderStateLocked()
	u.renderSchemesLocked()
	u.mu.Unlock()

	// Event loop
	go u.handleEvents(mEnableAll, mDisableAll, mCopy, mSchemesFile, mLogs, mAbout, mQuit)
}

func (u *UI) handleEvents(mEnableAll, mDisableAll, mCopy, mSchemesFile, mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mStartStop.ClickedCh:
			u.toggleMonitoring()
		case <-mEnableAll.ClickedCh:
			if err := u.app.EnableAll(); err != nil {
				u.log.Error().Err(err).Msg("Enable all failed")
			}
		case <-mDisableAll.ClickedCh:
			if err := u.app.DisableAll(); err != nil {
				u.log.Error().Err(err).Msg("Disable all failed")
			}
		case <-mCopy.ClickedCh:
			u.copyHotkeys()
		case <-mSchemesFile.ClickedCh:
			u.openFile(u.schemesPath)
		case <-mLogs.ClickedCh:
			u.openFile(logging.Path())
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) toggleMonitoring() {
	if u.app.State() != app.Stopped {
		u.app.Stop()
		return
	}
	if err := u.app.Start(); err != nil {
		u.log.Warn().Err(err).Msg("Could not start monitoring")
	}
}

func (u *UI) renderStateLocked() {
	systray.SetTitle(statusTitle(u.state, u.enabled))
	u.mStartStop.SetTitle(startStopTitle(u.state))
}

func (u *UI) renderSchemesLocked() {
	for len(u.slots) < len(u.schemes) {
		u.slots = append(u.slots, u.newSlotLocked(len(u.slots)))
	}

	for i, slot := range u.slots {
		if i >= len(u.schemes) {
			slot.parent.Hide()
			continue
		}
		s := u.schemes[i]
		slot.parent.SetTitle(schemeTitle(s))
		slot.parent.Show()
		if s.Enabled {
			slot.toggle.Check()
		} else {
			slot.toggle.Uncheck()
		}
	}
}

func (u *UI) newSlotLocked(index int) *schemeSlot {
	parent := u.mSchemes.AddSubMenuItem("", "")
	slot := &schemeSlot{
		parent: parent,
		toggle: parent.AddSubMenuItemCheckbox("Enabled", "Fire this scheme on its hotkey", false),
		record: parent.AddSubMenuItem("Record Hotkey", "Press the new key combination next"),
	}

	go func() {
		for {
			select {
			case <-slot.toggle.ClickedCh:
				u.toggleScheme(index)
			case <-slot.record.ClickedCh:
				u.recordHotkey(index, slot)
			}
		}
	}()
	return slot
}

func (u *UI) schemeAt(index int) (scheme.Scheme, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if index >= len(u.schemes) {
		return scheme.Scheme{}, false
	}
	return u.schemes[index], true
}

func (u *UI) toggleScheme(index int) {
	s, ok := u.schemeAt(index)
	if !ok {
		return
	}

	if err := u.app.ToggleScheme(s.ID, !s.Enabled); err != nil {
		u.reportToggleError(s, err)
	}
}

func (u *UI) reportToggleError(s scheme.Scheme, err error) {
	if errors.Is(err, app.ErrHotkeyRequired) {
		u.log.Warn().Str("scheme", s.Name).Msg("Record a hotkey before enabling this scheme")
		if u.notify != nil {
			u.notify.Notify("Hotkey Required", fmt.Sprintf("Record a hotkey for %s before enabling it", s.Name))
		}
		return
	}
	u.log.Error().Err(err).Str("scheme", s.Name).Msg("Failed to toggle scheme")
}

func (u *UI) recordHotkey(index int, slot *schemeSlot) {
	s, ok := u.schemeAt(index)
	if !ok {
		return
	}

	slot.record.SetTitle("Press a key combination...")
	defer slot.record.SetTitle("Record Hotkey")

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	combo, err := u.app.RecordHotkey(ctx, s.ID)
	if err != nil {
		u.log.Warn().Err(err).Str("scheme", s.Name).Msg("Hotkey not recorded")
		return
	}
	u.log.Info().Str("scheme", s.Name).Str("hotkey", combo.String()).Msg("Hotkey recorded")
}

func (u *UI) copyHotkeys() {
	u.mu.Lock()
	text := hotkeySummary(u.schemes)
	u.mu.Unlock()

	if err := clipboard.WriteAll(text); err != nil {
		u.log.Error().Err(err).Msg("Failed to copy hotkeys")
		return
	}
	u.log.Info().Msg("Copied hotkeys to clipboard")
}

func (u *UI) openFile(path string) {
	if err := browser.OpenFile(path); err != nil {
		u.log.Error().Err(err).Str("path", path).Msg("Failed to open file")
	}
}

func (u *UI) showAbout() {
	u.log.Info().Str("version", u.version).Str("commit", u.commit).Msg("SnapClick - hotkey-triggered auto clicker")
}

func (u *UI) onExit() {
	u.log.Info().Msg("Tray exited")
}

// statusTitle is the tray title: pointer emoji, state indicator and the
// number of enabled schemes.
func statusTitle(state app.State, enabled int) string {
	return fmt.Sprintf("🖱️ %s %d", emojiForState(state), enabled)
}

// emojiForState returns the appropriate status emoji
func emojiForState(state app.State) string {
	switch state {
	case app.Running:
		return "🟢" // Green - listening for hotkeys
	case app.Paused:
		return "🟡" // Yellow - recording a hotkey
	default:
		return "⚪️" // White - stopped
	}
}

func startStopTitle(state app.State) string {
	if state == app.Stopped {
		return "Start Monitoring"
	}
	return "Stop Monitoring"
}

func schemeTitle(s scheme.Scheme) string {
	return fmt.Sprintf("%s  [%s]", s.Summary(), s.Hotkey)
}

// hotkeySummary renders one line per scheme for the clipboard.
func hotkeySummary(schemes []scheme.Scheme) string {
	var b strings.Builder
	for _, s := range schemes {
		mark := " "
		if s.Enabled {
			mark = "x"
		}
		fmt.Fprintf(&b, "[%s] %-12s %s %s click\n", mark, s.Hotkey, s.Summary(), s.Button)
	}
	return b.String()
}
