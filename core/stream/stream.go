package stream

import (
	"context"
	"iter"
	"sync"
)

// Reusable fans one source sequence out to any number of independent
// consumers. A single pump goroutine, started lazily on the first Consume
// call, drains the source into an append-only buffer; each consumer iterates
// the buffer at its own cursor, blocking only when it has caught up with the
// pump.
//
// Every consumer observes the full item sequence from index 0 in source
// order, regardless of when it attaches. A source error is captured once and
// delivered to every consumer (present or future) that reads past the last
// successfully buffered item. After a source error the Reusable keeps
// replaying the prefix it buffered, but cannot be re-pumped; wrap a fresh
// source instead.
//
// The zero value is not usable; construct with [NewReusable].
type Reusable[T any] struct {
	source iter.Seq2[T, error]

	mu      sync.Mutex
	buffer  []T
	done    bool  // source exhausted normally
	failure error // source error, delivered at index len(buffer)
	// waiters holds the wake channel of every consumer currently blocked
	// waiting for new data. Registration happens under mu together with the
	// buffer-length check, so a wakeup between check and wait cannot be
	// missed. Channels are closed to wake and then discarded; a consumer
	// re-registers each time it blocks.
	waiters  map[int]chan struct{}
	nextID   int
	pumpOnce sync.Once
}

// NewReusable wraps source. The source is not touched until the first
// consumer is created.
func NewReusable[T any](source iter.Seq2[T, error]) *Reusable[T] {
	return &Reusable[T]{
		source:  source,
		waiters: make(map[int]chan struct{}),
	}
}

// Consume registers a new consumer and returns its sequence. The first call
// starts the pump. The sequence yields every buffered item in order, then
// either ends (source completed), yields the captured source error, or
// yields ctx.Err() if ctx is cancelled while waiting.
//
// Cancelling ctx unblocks only this consumer; the pump and other consumers
// are unaffected. Consumers never block each other: a slow reader only
// delays itself.
func (r *Reusable[T]) Consume(ctx context.Context) iter.Seq2[T, error] {
	r.pumpOnce.Do(r.startPump)

	return func(yield func(T, error) bool) {
		var zero T
		cursor := 0

		for {
			if ctx.Err() != nil {
				yield(zero, ctx.Err())
				return
			}

			r.mu.Lock()

			if cursor < len(r.buffer) {
				item := r.buffer[cursor]
				r.mu.Unlock()
				cursor++
				if !yield(item, nil) {
					return
				}
				continue
			}

			if r.failure != nil {
				failure := r.failure
				r.mu.Unlock()
				yield(zero, failure)
				return
			}

			if r.done {
				r.mu.Unlock()
				return
			}

			// Caught up and the pump is still running: register a wake
			// channel before releasing the lock, then wait.
			id := r.nextID
			r.nextID++
			wake := make(chan struct{})
			r.waiters[id] = wake
			r.mu.Unlock()

			select {
			case <-wake:
			case <-ctx.Done():
				r.mu.Lock()
				delete(r.waiters, id)
				r.mu.Unlock()
				yield(zero, ctx.Err())
				return
			}
		}
	}
}

// Len returns the number of items buffered so far.
func (r *Reusable[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffer)
}

// Err returns the captured source error, or nil if the source has not
// failed (yet).
func (r *Reusable[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failure
}

// startPump launches the single goroutine that drains the source. The pump
// ignores consumer cancellation: it runs until the source completes or
// fails, so late consumers can still receive the full sequence.
func (r *Reusable[T]) startPump() {
	go func() {
		for item, err := range r.source {
			if err != nil {
				r.fail(err)
				return
			}
			r.append(item)
		}
		r.complete()
	}()
}

func (r *Reusable[T]) append(item T) {
	r.mu.Lock()
	r.buffer = append(r.buffer, item)
	r.broadcastLocked()
	r.mu.Unlock()
}

func (r *Reusable[T]) complete() {
	r.mu.Lock()
	r.done = true
	r.broadcastLocked()
	r.mu.Unlock()
}

func (r *Reusable[T]) fail(err error) {
	r.mu.Lock()
	r.failure = err
	r.broadcastLocked()
	r.mu.Unlock()
}

// broadcastLocked wakes every blocked consumer. Each woken consumer
// re-checks its own cursor against the buffer under the lock, so spurious
// wakeups are harmless. Callers must hold mu.
func (r *Reusable[T]) broadcastLocked() {
	for id, wake := range r.waiters {
		close(wake)
		delete(r.waiters, id)
	}
}
