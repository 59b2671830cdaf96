package api

import (
	"context"
	"sync/atomic"
	"time"
)

// WorkClass separates cheap requests from engine searches so a burst of
// searches cannot starve evaluation and game bookkeeping.
type WorkClass int

const (
	ClassQuick  WorkClass = iota // Evaluate, hints, game moves
	ClassSearch                  // Best move, AI moves, tutor, streaming search
)

func (c WorkClass) String() string {
	return [...]string{"quick", "search"}[c]
}

// lane is the semaphore and counters for one work class.
type lane struct {
	sem    chan struct{}
	queued int64
	active int64
	total  int64
}

func newLane(n int) *lane {
	return &lane{sem: make(chan struct{}, n)}
}

// WorkerPool limits concurrent request processing per work class.
type WorkerPool struct {
	lanes [2]*lane
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxQuickWorkers  int // Max concurrent quick operations (default: 64)
	MaxSearchWorkers int // Max concurrent searches (default: 4)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxQuickWorkers:  64,
		MaxSearchWorkers: 4,
	}
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	def := DefaultPoolConfig()
	if config.MaxQuickWorkers <= 0 {
		config.MaxQuickWorkers = def.MaxQuickWorkers
	}
	if config.MaxSearchWorkers <= 0 {
		config.MaxSearchWorkers = def.MaxSearchWorkers
	}

	return &WorkerPool{lanes: [2]*lane{
		ClassQuick:  newLane(config.MaxQuickWorkers),
		ClassSearch: newLane(config.MaxSearchWorkers),
	}}
}

// Acquire waits for a slot of the given class.
// Returns an error if the context is cancelled while waiting.
func (p *WorkerPool) Acquire(ctx context.Context, c WorkClass) error {
	l := p.lanes[c]
	atomic.AddInt64(&l.queued, 1)
	defer atomic.AddInt64(&l.queued, -1)

	select {
	case l.sem <- struct{}{}:
		atomic.AddInt64(&l.active, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking.
// Returns true if acquired, false if the class is saturated.
func (p *WorkerPool) TryAcquire(c WorkClass) bool {
	l := p.lanes[c]
	select {
	case l.sem <- struct{}{}:
		atomic.AddInt64(&l.active, 1)
		return true
	default:
		return false
	}
}

// AcquireWithTimeout waits at most timeout for a slot.
func (p *WorkerPool) AcquireWithTimeout(c WorkClass, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.Acquire(ctx, c)
}

// Release returns a slot of the given class.
func (p *WorkerPool) Release(c WorkClass) {
	l := p.lanes[c]
	atomic.AddInt64(&l.active, -1)
	atomic.AddInt64(&l.total, 1)
	<-l.sem
}

// PoolStats is a snapshot of pool usage.
type PoolStats struct {
	ActiveQuick  int64 `json:"active_quick"`
	ActiveSearch int64 `json:"active_search"`
	QueuedQuick  int64 `json:"queued_quick"`
	QueuedSearch int64 `json:"queued_search"`
	TotalQuick   int64 `json:"total_quick"`
	TotalSearch  int64 `json:"total_search"`
	MaxQuick     int   `json:"max_quick"`
	MaxSearch    int   `json:"max_search"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	q, s := p.lanes[ClassQuick], p.lanes[ClassSearch]
	return PoolStats{
		ActiveQuick:  atomic.LoadInt64(&q.active),
		ActiveSearch: atomic.LoadInt64(&s.active),
		QueuedQuick:  atomic.LoadInt64(&q.queued),
		QueuedSearch: atomic.LoadInt64(&s.queued),
		TotalQuick:   atomic.LoadInt64(&q.total),
		TotalSearch:  atomic.LoadInt64(&s.total),
		MaxQuick:     cap(q.sem),
		MaxSearch:    cap(s.sem),
	}
}
