// Package notify delivers user-facing notifications off the caller's
// goroutine.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	queueSize   = 8
	sendTimeout = 3 * time.Second
)

// Sink accepts notifications. Implementations must not block.
type Sink interface {
	Notify(title, message string)
}

// Backend shows a single notification on the desktop.
type Backend interface {
	Send(ctx context.Context, title, message string) error
}

type note struct {
	title   string
	message string
}

// Notifier queues notifications and hands them to a Backend from Run.
// When the queue is full new notifications are dropped.
type Notifier struct {
	backend Backend
	enabled bool
	log     zerolog.Logger
	queue   chan note
}

func New(backend Backend, enabled bool, log zerolog.Logger) *Notifier {
	return &Notifier{
		backend: backend,
		enabled: enabled,
		log:     log,
		queue:   make(chan note, queueSize),
	}
}

// Notify queues a notification without blocking.
func (n *Notifier) Notify(title, message string) {
	n.log.Info().Str("title", title).Str("message", message).Msg("Notification")
	if !n.enabled {
		return
	}

	select {
	case n.queue <- note{title: title, message: message}:
	default:
		n.log.Debug().Str("title", title).Msg("Notification queue full, dropping")
	}
}

// Run delivers queued notifications until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case nt := <-n.queue:
			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
			if err := n.backend.Send(sendCtx, nt.title, nt.message); err != nil {
				n.log.Warn().Err(err).Str("title", nt.title).Msg("Failed to show notification")
			}
			cancel()
		}
	}
}

// LogBackend writes notifications to the log only.
type LogBackend struct {
	Log zerolog.Logger
}

func (b LogBackend) Send(_ context.Context, title, message string) error {
	b.Log.Debug().Str("title", title).Str("message", message).Msg("Notification (log only)")
	return nil
}
