// Package clicker plays click schemes: a fixed number of press/release
// pairs spread evenly over the scheme's duration, at most one run at a time.
package clicker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/snapclick/internal/inject"
	"github.com/petems/snapclick/internal/scheme"
)

// DefaultPressHold models the press-hold-release shape of a physical click.
const DefaultPressHold = time.Millisecond

// Cue is the sound played once when a run starts.
type Cue interface {
	Play()
}

type Config struct {
	Pointer   inject.Pointer
	Cue       Cue // Optional - can be nil
	PressHold time.Duration
	Logger    zerolog.Logger
}

// Engine executes schemes. A new Execute always preempts the run in
// progress; the preempted run stops at its next check without being
// waited for.
type Engine struct {
	pointer   inject.Pointer
	cue       Cue
	pressHold time.Duration
	log       zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	runID   uint64
	running bool

	// clickMu makes each press/release pair atomic with respect to
	// cancellation: a run checks its context while holding it.
	clickMu sync.Mutex
	wg      sync.WaitGroup
}

func New(cfg Config) *Engine {
	hold := cfg.PressHold
	if hold <= 0 {
		hold = DefaultPressHold
	}
	return &Engine{
		pointer:   cfg.Pointer,
		cue:       cfg.Cue,
		pressHold: hold,
		log:       cfg.Logger,
	}
}

// Execute starts s on a dedicated worker and returns immediately.
func (e *Engine) Execute(s scheme.Scheme) {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.runID++
	id := e.runID
	e.running = true
	e.wg.Add(1)
	e.mu.Unlock()

	anchor, ok := e.pointer.Position()
	if !ok {
		e.log.Debug().Msg("Pointer position unavailable for anchor")
	}

	e.log.Info().
		Str("scheme", s.Name).
		Int("clicks", s.ClickCount).
		Float64("duration", s.TotalDuration).
		Int("x", anchor.X).
		Int("y", anchor.Y).
		Msg("Starting click run")

	if e.cue != nil {
		e.cue.Play()
	}

	go e.run(ctx, cancel, id, s, anchor)
}

// Cancel stops the run in progress, if any, at its next check.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Running reports whether a run is in progress.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Wait blocks until every started run has returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) run(ctx context.Context, cancel context.CancelFunc, id uint64, s scheme.Scheme, anchor inject.Point) {
	defer e.wg.Done()
	defer cancel()

	interval := s.Interval()
	start := time.Now()
	completed := 0

	defer func() {
		e.finish(id)
		e.log.Info().
			Str("scheme", s.Name).
			Int("completed", completed).
			Bool("cancelled", ctx.Err() != nil && completed < s.ClickCount).
			Msg("Click run finished")
	}()

	for i := 1; i <= s.ClickCount; i++ {
		if !e.click(ctx, s.Button, anchor) {
			return
		}
		completed++

		if i < s.ClickCount {
			// Deadlines come from the run's start on the monotonic clock so
			// per-click overhead does not accumulate.
			if !sleepUntil(ctx, start.Add(time.Duration(i)*interval)) {
				return
			}
		}
	}
}

// click posts one press/release pair at the live pointer position, or at
// anchor when sampling fails. It returns false without clicking once ctx
// is cancelled.
func (e *Engine) click(ctx context.Context, button scheme.Button, anchor inject.Point) bool {
	e.clickMu.Lock()
	defer e.clickMu.Unlock()

	if ctx.Err() != nil {
		return false
	}

	pt, ok := e.pointer.Position()
	if !ok {
		pt = anchor
	}

	if err := e.pointer.Post(button, inject.Press, pt); err != nil {
		e.log.Warn().Err(err).Msg("Press failed")
	}
	time.Sleep(e.pressHold)
	if err := e.pointer.Post(button, inject.Release, pt); err != nil {
		e.log.Warn().Err(err).Msg("Release failed")
	}
	return true
}

func (e *Engine) finish(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.runID == id {
		e.running = false
		e.cancel = nil
	}
}

func sleepUntil(ctx context.Context, deadline time.Time) bool {
	d := time.Until(deadline)
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
