package poller

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"multibroker-console/internal/logger"
)

// Poller refreshes one view of backend state on a fixed interval. A new tick
// supersedes a still-running fetch, and writes pause the loop so a stale
// refresh cannot clobber what the operator just submitted.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    func(ctx context.Context) (T, error)
	onUpdate func(T)

	mu       sync.Mutex
	paused   bool
	inFlight context.CancelFunc
	snapshot []byte

	onError func(error)
	refresh chan struct{}
}

func New[T any](name string, interval time.Duration, fetch func(ctx context.Context) (T, error), onUpdate func(T)) *Poller[T] {
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		onUpdate: onUpdate,
		refresh:  make(chan struct{}, 1),
	}
}

// OnError installs a hook for fetch failures. Superseded and shut-down
// fetches never reach it. Defaults to a logged warning.
func (p *Poller[T]) OnError(fn func(error)) *Poller[T] {
	p.onError = fn
	return p
}

// Pause stops ticks from firing fetches. In-flight work is cancelled.
func (p *Poller[T]) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	if p.inFlight != nil {
		p.inFlight()
		p.inFlight = nil
	}
}

// Resume re-enables the loop and queues an immediate refresh so the view
// reflects whatever the write just changed.
func (p *Poller[T]) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.Refresh()
}

// Refresh queues an out-of-band tick. Coalesces if one is already queued.
func (p *Poller[T]) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled. The first fetch fires immediately.
func (p *Poller[T]) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		case <-p.refresh:
			p.tick(ctx)
		}
	}
}

func (p *Poller[T]) tick(ctx context.Context) {
	p.mu.Lock()
	if p.paused {
		p.mu.Unlock()
		return
	}
	// A tick arriving while the previous fetch is still out supersedes it.
	if p.inFlight != nil {
		p.inFlight()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	p.inFlight = cancel
	p.mu.Unlock()

	go p.run(fetchCtx, cancel)
}

func (p *Poller[T]) run(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	value, err := p.fetch(ctx)
	if err != nil {
		// Superseded or shut down, not a fault.
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		if p.onError != nil {
			p.onError(err)
			return
		}
		logger.Warn(ctx, "Poll fetch failed", "poller", p.name, "error", err)
		return
	}

	snap, err := json.Marshal(value)
	if err != nil {
		logger.ErrorWithErr(ctx, "Poll snapshot failed", err, "poller", p.name)
		return
	}

	p.mu.Lock()
	if p.paused || ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	changed := !bytes.Equal(snap, p.snapshot)
	if changed {
		p.snapshot = snap
	}
	p.mu.Unlock()

	if changed && p.onUpdate != nil {
		p.onUpdate(value)
	}
}
