// Package middleware provides the HTTP middleware around the dispatcher.
package middleware

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// Pool bounds the number of requests dispatched concurrently, standing in
// for a fixed-size worker pool: a request takes a slot, waits for one up
// to the queue timeout, or is turned away.
type Pool struct {
	slots   chan struct{}
	timeout time.Duration
	logger  observability.Logger
	closed  atomic.Bool
	wg      sync.WaitGroup
}

// PoolOption is a functional option for the admission pool.
type PoolOption func(*Pool)

// WithPoolLogger sets the logger.
func WithPoolLogger(logger observability.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// NewPool creates an admission pool with size concurrent slots. A
// non-positive queueTimeout rejects immediately when all slots are taken.
func NewPool(size int, queueTimeout time.Duration, opts ...PoolOption) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		slots:   make(chan struct{}, size),
		timeout: queueTimeout,
		logger:  observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Acquire takes a slot, waiting up to the queue timeout. It reports false
// when the pool is full past the timeout, the request context ends, or
// the pool is draining.
func (p *Pool) Acquire(ctx context.Context) bool {
	if p.closed.Load() {
		return false
	}

	select {
	case p.slots <- struct{}{}:
		p.wg.Add(1)
		return true
	default:
	}

	if p.timeout <= 0 {
		return false
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case p.slots <- struct{}{}:
		if p.closed.Load() {
			<-p.slots
			return false
		}
		p.wg.Add(1)
		return true
	case <-ctx.Done():
		return false
	case <-timer.C:
		return false
	}
}

// Release returns a slot to the pool.
func (p *Pool) Release() {
	<-p.slots
	p.wg.Done()
}

// InFlight returns the number of requests currently holding a slot.
func (p *Pool) InFlight() int {
	return len(p.slots)
}

// Capacity returns the pool size.
func (p *Pool) Capacity() int {
	return cap(p.slots)
}

// Drain stops admitting new requests and waits for in-flight requests to
// finish or the context to end. In-flight requests are never aborted.
func (p *Pool) Drain(ctx context.Context) error {
	p.closed.Store(true)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Admission returns a middleware that gates requests through the pool,
// answering 503 when no slot can be had.
func Admission(pool *Pool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !pool.Acquire(r.Context()) {
				pool.logger.Warn("admission rejected",
					observability.String("path", r.URL.Path),
					observability.String("method", r.Method),
					observability.Int("in_flight", pool.InFlight()),
					observability.Int("capacity", pool.Capacity()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = io.WriteString(w, `{"message":"server is at capacity"}`)
				return
			}
			defer pool.Release()

			next.ServeHTTP(w, r)
		})
	}
}
