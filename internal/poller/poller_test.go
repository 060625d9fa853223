package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type book struct {
	Rows []string `json:"rows"`
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestPollerNotifiesOnChangeOnly(t *testing.T) {
	var fetches, updates atomic.Int32
	var mu sync.Mutex
	current := book{Rows: []string{"a"}}

	p := New("orders", 10*time.Millisecond,
		func(ctx context.Context) (book, error) {
			fetches.Add(1)
			mu.Lock()
			defer mu.Unlock()
			return current, nil
		},
		func(b book) { updates.Add(1) },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitFor(t, func() bool { return fetches.Load() >= 3 }, "poller never ticked")
	if got := updates.Load(); got != 1 {
		t.Errorf("Expected a single update for an unchanged snapshot, got %d", got)
	}

	mu.Lock()
	current = book{Rows: []string{"a", "b"}}
	mu.Unlock()

	waitFor(t, func() bool { return updates.Load() == 2 }, "change never notified")
}

func TestPollerPauseBlocksFetches(t *testing.T) {
	var fetches atomic.Int32
	p := New("orders", 10*time.Millisecond,
		func(ctx context.Context) (book, error) {
			fetches.Add(1)
			return book{}, nil
		},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitFor(t, func() bool { return fetches.Load() >= 1 }, "poller never started")
	p.Pause()
	n := fetches.Load()
	time.Sleep(50 * time.Millisecond)
	if fetches.Load() != n {
		t.Errorf("Expected no fetches while paused, got %d more", fetches.Load()-n)
	}

	p.Resume()
	waitFor(t, func() bool { return fetches.Load() > n }, "resume never refreshed")
}

func TestPollerSupersedesSlowFetch(t *testing.T) {
	var cancelled atomic.Int32
	started := make(chan struct{}, 16)

	p := New("orders", time.Hour,
		func(ctx context.Context) (book, error) {
			started <- struct{}{}
			select {
			case <-ctx.Done():
				cancelled.Add(1)
				return book{}, ctx.Err()
			case <-time.After(2 * time.Second):
				return book{}, nil
			}
		},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	<-started
	p.Refresh()
	<-started

	waitFor(t, func() bool { return cancelled.Load() >= 1 }, "stale fetch never cancelled")
}

func TestPollerSwallowsCancellation(t *testing.T) {
	var updates atomic.Int32
	p := New("orders", 10*time.Millisecond,
		func(ctx context.Context) (book, error) {
			return book{}, context.Canceled
		},
		func(book) { updates.Add(1) },
	)

	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)
	time.Sleep(40 * time.Millisecond)
	cancel()

	if updates.Load() != 0 {
		t.Error("Expected cancelled fetches to produce no updates")
	}
}

func TestPollerLogsButContinuesOnError(t *testing.T) {
	var fetches, errs atomic.Int32
	fail := atomic.Bool{}
	fail.Store(true)
	var updated atomic.Bool

	p := New("orders", 10*time.Millisecond,
		func(ctx context.Context) (book, error) {
			fetches.Add(1)
			if fail.Load() {
				return book{}, errors.New("boom")
			}
			return book{Rows: []string{"x"}}, nil
		},
		func(book) { updated.Store(true) },
	).OnError(func(error) { errs.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitFor(t, func() bool { return fetches.Load() >= 2 }, "poller stopped after error")
	if errs.Load() == 0 {
		t.Error("Expected the error hook to fire")
	}
	fail.Store(false)
	waitFor(t, func() bool { return updated.Load() }, "poller never recovered")
}
