package table

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the wait applied between a query change and the fetch
// it triggers. Tuned for list-search inputs; override via Fetcher.Window.
const DefaultDebounce = 900 * time.Millisecond

// Fetcher refetches server-paged data when list state changes. Rapid
// triggers are debounced into one fetch, and responses that are no longer
// the most recent are discarded so a slow early response can never
// overwrite a later one.
type Fetcher[T any] struct {
	// Window is the debounce delay; DefaultDebounce when zero.
	Window time.Duration
	// Fetch loads one page of rows plus the authoritative total.
	Fetch func(context.Context, Query) ([]T, int, error)
	// OnResult receives rows from the latest fetch only.
	OnResult func([]T, int)
	// OnError receives the error from the latest fetch only. Optional.
	OnError func(error)

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// Trigger schedules a fetch for the query after the debounce window,
// replacing any fetch still pending.
func (f *Fetcher[T]) Trigger(ctx context.Context, q Query) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	d := f.Window
	if d <= 0 {
		d = DefaultDebounce
	}
	f.timer = time.AfterFunc(d, func() {
		f.run(ctx, q)
	})
}

// TriggerNow fetches without the debounce delay, for interactions like page
// clicks where no further input is expected.
func (f *Fetcher[T]) TriggerNow(ctx context.Context, q Query) {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.mu.Unlock()
	f.run(ctx, q)
}

// Stop cancels any pending fetch. In-flight responses are still discarded
// through the sequence check.
func (f *Fetcher[T]) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.seq++
}

func (f *Fetcher[T]) run(ctx context.Context, q Query) {
	if ctx.Err() != nil {
		return
	}
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	rows, total, err := f.Fetch(ctx, q)

	f.mu.Lock()
	latest := seq == f.seq
	f.mu.Unlock()
	if !latest || ctx.Err() != nil {
		return
	}
	if err != nil {
		if f.OnError != nil {
			f.OnError(err)
		}
		return
	}
	f.OnResult(rows, total)
}
