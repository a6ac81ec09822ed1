package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mu    sync.Mutex
	sent  []note
	err   error
	block chan struct{}
}

func (m *mockBackend) Send(ctx context.Context, title, message string) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, note{title: title, message: message})
	return m.err
}

func (m *mockBackend) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestNotifierDelivers(t *testing.T) {
	backend := &mockBackend{}
	n := New(backend, true, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	n.Notify("SnapClick Started", "Loaded 2 schemes")

	require.Eventually(t, func() bool { return backend.count() == 1 }, time.Second, 5*time.Millisecond)
	backend.mu.Lock()
	assert.Equal(t, note{title: "SnapClick Started", message: "Loaded 2 schemes"}, backend.sent[0])
	backend.mu.Unlock()
}

func TestNotifierDisabled(t *testing.T) {
	backend := &mockBackend{}
	n := New(backend, false, zerolog.Nop())

	n.Notify("SnapClick Stopped", "")

	assert.Len(t, n.queue, 0)
}

func TestNotifyNeverBlocks(t *testing.T) {
	backend := &mockBackend{block: make(chan struct{})}
	n := New(backend, true, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*3; i++ {
			n.Notify("Executing", "spam")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked")
	}
	assert.Len(t, n.queue, queueSize)
}

func TestRunSurvivesBackendErrors(t *testing.T) {
	backend := &mockBackend{err: errors.New("no daemon")}
	n := New(backend, true, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	n.Notify("a", "1")
	n.Notify("b", "2")

	require.Eventually(t, func() bool { return backend.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestLogBackend(t *testing.T) {
	assert.NoError(t, LogBackend{Log: zerolog.Nop()}.Send(context.Background(), "t", "m"))
}
