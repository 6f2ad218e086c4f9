// Package dry provides a backend that executes nothing. It measures the
// overhead of the harness itself and drives use case tests.
package dry

import (
	"context"
	"sync"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

// Version is reported as the server version.
const Version = "dry-1"

// Backend records the operations it is asked to run.
type Backend struct {
	mu        sync.Mutex
	delay     time.Duration
	failures  map[catalogue.QueryID]error
	connected bool
	connects  int
	resets    int
	executed  []catalogue.QueryID
}

// Option configures a dry backend.
type Option func(*Backend)

// WithDelay makes every operation sleep for d.
func WithDelay(d time.Duration) Option {
	return func(b *Backend) { b.delay = d }
}

// WithFailure makes operation id fail with err.
func WithFailure(id catalogue.QueryID, err error) Option {
	return func(b *Backend) { b.failures[id] = err }
}

// New creates a dry backend.
func New(opts ...Option) *Backend {
	b := &Backend{failures: make(map[catalogue.QueryID]error)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Factory returns a backend.Factory that hands out b on every call, so
// tests can inspect what a session executed.
func Factory(b *Backend) backend.Factory {
	return func(connection.Connection) (backend.Backend, error) {
		return b, nil
	}
}

// Type returns DatabaseTypeDry.
func (b *Backend) Type() connection.DatabaseType {
	return connection.DatabaseTypeDry
}

// Connect marks the backend connected.
func (b *Backend) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = true
	b.connects++
	return ctx.Err()
}

// Reset counts the reset.
func (b *Backend) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.connected {
		return backend.ErrNotConnected
	}
	b.resets++
	return nil
}

// Execute records q and waits for the configured delay.
func (b *Backend) Execute(ctx context.Context, q catalogue.Query, w *backend.Workload) error {
	b.mu.Lock()
	if !b.connected {
		b.mu.Unlock()
		return backend.ErrNotConnected
	}
	b.executed = append(b.executed, q.ID)
	err := b.failures[q.ID]
	delay := b.delay
	b.mu.Unlock()

	if err != nil {
		return err
	}
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Version returns Version.
func (b *Backend) Version(context.Context) (string, error) {
	return Version, nil
}

// Close marks the backend disconnected.
func (b *Backend) Close(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
	return nil
}

// Executed returns the operations run so far in order.
func (b *Backend) Executed() []catalogue.QueryID {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]catalogue.QueryID, len(b.executed))
	copy(out, b.executed)
	return out
}

// Connects returns how many times Connect was called.
func (b *Backend) Connects() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connects
}

// Resets returns how many times Reset was called.
func (b *Backend) Resets() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resets
}
