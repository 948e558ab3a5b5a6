package stream

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"testing"
	"time"
)

// sliceSource yields items in order, failing with err (if non-nil) after the
// last item.
func sliceSource[T any](items []T, err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
		if err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// gatedSource yields one item each time gate is signalled, so tests can
// control pump timing precisely.
func gatedSource(items []int, gate <-chan struct{}, err error) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for _, item := range items {
			<-gate
			if !yield(item, nil) {
				return
			}
		}
		<-gate
		if err != nil {
			yield(0, err)
		}
	}
}

func collect[T any](t *testing.T, seq iter.Seq2[T, error]) ([]T, error) {
	t.Helper()
	var items []T
	for item, err := range seq {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

func TestReusable_SingleConsumerFullSequence(t *testing.T) {
	want := []int{1, 2, 3, 4, 5}
	r := NewReusable(sliceSource(want, nil))

	got, err := collect(t, r.Consume(context.Background()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReusable_SourceNotStartedBeforeFirstConsumer(t *testing.T) {
	started := make(chan struct{})
	source := func(yield func(int, error) bool) {
		close(started)
		yield(1, nil)
	}

	r := NewReusable(source)

	select {
	case <-started:
		t.Fatal("source started before any consumer attached")
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := collect(t, r.Consume(context.Background())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-started:
	default:
		t.Fatal("source never started")
	}
}

func TestReusable_LateConsumerSeesFullSequence(t *testing.T) {
	want := []int{10, 20, 30}
	r := NewReusable(sliceSource(want, nil))
	ctx := context.Background()

	// First consumer drains the stream completely.
	if _, err := collect(t, r.Consume(ctx)); err != nil {
		t.Fatalf("first consumer: %v", err)
	}
	if r.Len() != len(want) {
		t.Fatalf("buffered %d items, want %d", r.Len(), len(want))
	}

	// A consumer attached after completion still replays from index 0.
	got, err := collect(t, r.Consume(ctx))
	if err != nil {
		t.Fatalf("late consumer: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("late consumer got %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("late consumer item %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReusable_ConcurrentConsumersSeeIdenticalSequences(t *testing.T) {
	const consumers = 8
	const itemCount = 200

	items := make([]int, itemCount)
	for i := range items {
		items[i] = i * 3
	}
	r := NewReusable(sliceSource(items, nil))
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]int, consumers)
	errs := make([]error, consumers)

	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			results[c], errs[c] = collect(t, r.Consume(ctx))
		}(c)
	}
	wg.Wait()

	for c := 0; c < consumers; c++ {
		if errs[c] != nil {
			t.Fatalf("consumer %d: unexpected error %v", c, errs[c])
		}
		if len(results[c]) != itemCount {
			t.Fatalf("consumer %d: got %d items, want %d", c, len(results[c]), itemCount)
		}
		for i := range items {
			if results[c][i] != items[i] {
				t.Fatalf("consumer %d item %d: got %d, want %d", c, i, results[c][i], items[i])
			}
		}
	}
}

func TestReusable_ErrorDeliveredAfterBufferedPrefix(t *testing.T) {
	sourceErr := errors.New("connection reset")
	r := NewReusable(sliceSource([]int{1, 2, 3}, sourceErr))
	ctx := context.Background()

	got, err := collect(t, r.Consume(ctx))
	if !errors.Is(err, sourceErr) {
		t.Fatalf("got error %v, want %v", err, sourceErr)
	}
	if len(got) != 3 {
		t.Fatalf("got %d items before error, want 3", len(got))
	}

	// A late consumer replays the prefix and receives the same error.
	got, err = collect(t, r.Consume(ctx))
	if !errors.Is(err, sourceErr) {
		t.Fatalf("late consumer: got error %v, want %v", err, sourceErr)
	}
	if len(got) != 3 {
		t.Fatalf("late consumer got %d items, want 3", len(got))
	}

	if !errors.Is(r.Err(), sourceErr) {
		t.Errorf("Err() = %v, want %v", r.Err(), sourceErr)
	}
}

func TestReusable_CancelUnblocksOnlyThatConsumer(t *testing.T) {
	gate := make(chan struct{})
	r := NewReusable(gatedSource([]int{1, 2}, gate, nil))

	canceledCtx, cancel := context.WithCancel(context.Background())

	// The first consumer blocks waiting for data that has not been pumped.
	blockedErr := make(chan error, 1)
	go func() {
		_, err := collect(t, r.Consume(canceledCtx))
		blockedErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-blockedErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("blocked consumer got %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled consumer did not unblock")
	}

	// The pump and a second consumer are unaffected.
	go func() {
		gate <- struct{}{}
		gate <- struct{}{}
		gate <- struct{}{}
	}()

	got, err := collect(t, r.Consume(context.Background()))
	if err != nil {
		t.Fatalf("second consumer: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("second consumer got %v, want [1 2]", got)
	}
}

func TestReusable_ConsumerCancelledBeforeFailureNeverSeesIt(t *testing.T) {
	gate := make(chan struct{})
	sourceErr := errors.New("mid-stream failure")
	r := NewReusable(gatedSource([]int{7}, gate, sourceErr))

	ctx, cancel := context.WithCancel(context.Background())

	var got []int
	var consumerErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		got, consumerErr = collect(t, r.Consume(ctx))
	}()

	// Release the single item, let the consumer read it, then cancel before
	// the failure is pumped.
	gate <- struct{}{}
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if !errors.Is(consumerErr, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", consumerErr)
	}
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("got %v, want [7]", got)
	}

	// Now let the source fail; other consumers observe the failure.
	gate <- struct{}{}
	_, err := collect(t, r.Consume(context.Background()))
	if !errors.Is(err, sourceErr) {
		t.Fatalf("fresh consumer got %v, want %v", err, sourceErr)
	}
}

func TestReusable_SlowConsumerDoesNotBlockFastOne(t *testing.T) {
	const itemCount = 50
	items := make([]int, itemCount)
	for i := range items {
		items[i] = i
	}
	r := NewReusable(sliceSource(items, nil))
	ctx := context.Background()

	slowStarted := make(chan struct{})
	slowRelease := make(chan struct{})
	go func() {
		first := true
		for range r.Consume(ctx) {
			if first {
				close(slowStarted)
				first = false
			}
			<-slowRelease
		}
	}()

	<-slowStarted

	fastDone := make(chan error, 1)
	go func() {
		got, err := collect(t, r.Consume(ctx))
		if err == nil && len(got) != itemCount {
			err = fmt.Errorf("fast consumer got %d items, want %d", len(got), itemCount)
		}
		fastDone <- err
	}()

	select {
	case err := <-fastDone:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fast consumer was blocked by the slow one")
	}

	close(slowRelease)
}

func TestReusable_BreakingOutOfRangeReleasesNothingShared(t *testing.T) {
	items := []int{1, 2, 3, 4}
	r := NewReusable(sliceSource(items, nil))
	ctx := context.Background()

	// Break after the first item.
	for item := range r.Consume(ctx) {
		if item != 1 {
			t.Fatalf("got %d, want 1", item)
		}
		break
	}

	// The multiplexer is unaffected: a new consumer gets everything.
	got, err := collect(t, r.Consume(ctx))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("got %d items, want %d", len(got), len(items))
	}
}

func TestReusable_EmptySource(t *testing.T) {
	r := NewReusable(sliceSource[int](nil, nil))

	got, err := collect(t, r.Consume(context.Background()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d items, want 0", len(got))
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestReusable_ImmediateSourceError(t *testing.T) {
	sourceErr := errors.New("boom")
	r := NewReusable(sliceSource[int](nil, sourceErr))

	got, err := collect(t, r.Consume(context.Background()))
	if !errors.Is(err, sourceErr) {
		t.Fatalf("got %v, want %v", err, sourceErr)
	}
	if len(got) != 0 {
		t.Fatalf("got %d items before error, want 0", len(got))
	}
}
