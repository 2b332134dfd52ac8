package reactive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// defaultScheduler makes sure results are queued for the test goroutine.
func defaultScheduler(t *testing.T) {
	t.Helper()
	old := SetScheduler(nil)
	t.Cleanup(func() { SetScheduler(old) })
}

// waitDelivered drains queued results on the test goroutine until at least
// one has been delivered.
func waitDelivered(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for Drain() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for async delivery")
		}
		time.Sleep(time.Millisecond)
	}
}

// waitSettled drains queued results until c has no evaluation in flight.
func waitSettled[T any](t *testing.T, c *Computed[T]) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.Pending() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the computed to settle")
		}
		time.Sleep(time.Millisecond)
		Drain()
	}
}

func TestAsyncComputedUnsetUntilResolved(t *testing.T) {
	defaultScheduler(t)

	gate := make(chan struct{})
	c := NewAsyncComputed(
		func() int { return 1 },
		func(ctx context.Context, k int) (string, error) {
			<-gate
			return fmt.Sprint("value-", k), nil
		},
	)

	if _, ok := c.Lookup(); ok {
		t.Fatal("expected Unset before resolution")
	}
	if !IsUnset(c.GetAny()) {
		t.Errorf("GetAny should return Unset, got %v", c.GetAny())
	}
	if !c.Pending() {
		t.Error("expected evaluation in flight")
	}

	close(gate)
	waitDelivered(t)

	v, ok := c.Lookup()
	if !ok || v != "value-1" {
		t.Errorf("expected value-1, got %q (ok=%v)", v, ok)
	}
	if c.Pending() {
		t.Error("expected no evaluation in flight")
	}
}

func TestAsyncComputedSupersession(t *testing.T) {
	defaultScheduler(t)

	id := NewState(1)
	gates := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	var mu sync.Mutex
	cancelled := map[int]bool{}

	c := NewAsyncComputed(
		func() int { return id.Get() },
		func(ctx context.Context, k int) (string, error) {
			<-gates[k]
			mu.Lock()
			cancelled[k] = ctx.Err() != nil
			mu.Unlock()
			// Deliberately ignores cancellation: the result must still be dropped.
			return fmt.Sprint("user-", k), nil
		},
	)

	var observed []string
	dispose := NewEffect(func() Cleanup {
		if v, ok := c.Lookup(); ok {
			observed = append(observed, v)
		}
		return nil
	})
	defer dispose()

	id.Set(2)

	close(gates[1])
	waitDelivered(t)
	if _, ok := c.Lookup(); ok {
		t.Fatal("superseded result must not be cached")
	}

	close(gates[2])
	waitDelivered(t)

	if len(observed) != 1 || observed[0] != "user-2" {
		t.Errorf("expected only user-2 to be observed, got %v", observed)
	}
	mu.Lock()
	defer mu.Unlock()
	if !cancelled[1] {
		t.Error("first evaluation's context should be cancelled")
	}
	if cancelled[2] {
		t.Error("latest evaluation's context must not be cancelled")
	}
}

func TestAsyncComputedKeepsValueWhilePending(t *testing.T) {
	defaultScheduler(t)

	n := NewState(1)
	gates := []chan struct{}{make(chan struct{}), make(chan struct{}), make(chan struct{})}
	c := NewAsyncComputed(
		func() int { return n.Get() },
		func(ctx context.Context, k int) (int, error) {
			<-gates[k]
			return k * 100, nil
		},
	)

	_, _ = c.Lookup()
	close(gates[1])
	waitDelivered(t)

	n.Set(2)
	v, ok := c.Lookup()
	if !ok || v != 100 {
		t.Errorf("expected previous value 100 while pending, got %d (ok=%v)", v, ok)
	}

	close(gates[2])
	waitDelivered(t)
	if got := c.Get(); got != 200 {
		t.Errorf("expected 200, got %d", got)
	}
}

func TestAsyncComputedRetriesAfterRejection(t *testing.T) {
	defaultScheduler(t)

	var mu sync.Mutex
	attempts := 0
	c := NewAsyncComputed(
		func() struct{} { return struct{}{} },
		func(ctx context.Context, _ struct{}) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			if attempts == 1 {
				return "", errors.New("unavailable")
			}
			return "ok", nil
		},
	)

	_, _ = c.Read()
	waitDelivered(t)

	// The read after a rejection reports it and starts the retry.
	_, err := c.Read()
	var pe *ProducerError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProducerError, got %v", err)
	}
	waitDelivered(t)

	v, err := c.Read()
	if err != nil || v != "ok" {
		t.Errorf("expected ok after retry, got %q, %v", v, err)
	}
	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestAsyncComputedRejectionReachesEffectsOnce(t *testing.T) {
	defaultScheduler(t)

	var mu sync.Mutex
	attempts := 0
	c := NewAsyncComputed(
		func() int { return 0 },
		func(ctx context.Context, _ int) (int, error) {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			return 0, errors.New("down")
		},
	)

	var errs int
	dispose := NewEffect(func() Cleanup {
		if _, err := c.Read(); err != nil {
			errs++
		}
		return nil
	})
	defer dispose()

	waitDelivered(t)
	if errs != 1 {
		t.Errorf("expected the effect to see the rejection once, got %d", errs)
	}

	// Delivering the rejection does not start another fetch by itself.
	time.Sleep(20 * time.Millisecond)
	if n := Drain(); n != 0 {
		t.Errorf("expected no further deliveries, got %d", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestAsyncComputedInvalidate(t *testing.T) {
	defaultScheduler(t)

	calls := 0
	c := NewAsyncComputed(
		func() int { calls++; return calls },
		func(ctx context.Context, k int) (int, error) { return k, nil },
	)
	_, _ = c.Lookup()
	waitDelivered(t)

	c.Invalidate()
	if v, ok := c.Lookup(); !ok || v != 1 {
		t.Errorf("expected the previous value while pending, got %d (ok=%v)", v, ok)
	}
	waitDelivered(t)
	if got := c.Get(); got != 2 {
		t.Errorf("expected Invalidate to re-run the source, got %d", got)
	}
}

func TestAsyncComputedSupersededWithoutReaders(t *testing.T) {
	defaultScheduler(t)

	id := NewState(1)
	gates := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	c := NewAsyncComputed(
		func() int { return id.Get() },
		func(ctx context.Context, k int) (string, error) {
			<-gates[k]
			return fmt.Sprint("user-", k), nil
		},
	)

	_, _ = c.Lookup()
	id.Set(2)
	if c.Pending() {
		t.Error("a dependency change should supersede the in-flight evaluation")
	}

	close(gates[1])
	waitDelivered(t)

	if v, ok := c.Lookup(); ok {
		t.Fatalf("superseded result was cached: %q", v)
	}

	close(gates[2])
	waitDelivered(t)
	if v, ok := c.Lookup(); !ok || v != "user-2" {
		t.Errorf("expected user-2, got %q (ok=%v)", v, ok)
	}
}

func TestDefaultSchedulerDeliversOnGraphGoroutine(t *testing.T) {
	defaultScheduler(t)

	graph := getGoroutineID()
	n := NewState(0)
	c := NewAsyncComputed(
		func() int { return n.Get() },
		func(ctx context.Context, k int) (int, error) { return k * 2, nil },
	)

	var mu sync.Mutex
	var foreign int
	dispose := NewEffect(func() Cleanup {
		_, _ = c.Lookup()
		if getGoroutineID() != graph {
			mu.Lock()
			foreign++
			mu.Unlock()
		}
		return nil
	})
	defer dispose()

	for i := 1; i < 20; i++ {
		n.Set(i)
		time.Sleep(time.Millisecond)
	}
	waitSettled(t, c)

	mu.Lock()
	defer mu.Unlock()
	if foreign != 0 {
		t.Errorf("effect ran %d times off the graph goroutine", foreign)
	}
	if got := c.Get(); got != 38 {
		t.Errorf("expected 38, got %d", got)
	}
}

func TestAsyncComputedPanickingFetchBecomesError(t *testing.T) {
	defaultScheduler(t)

	c := NewAsyncComputed(
		func() int { return 0 },
		func(ctx context.Context, _ int) (int, error) {
			panic("fetch exploded")
		},
	)
	_, _ = c.Read()
	waitDelivered(t)

	if _, err := c.Read(); err == nil {
		t.Error("expected panic to surface as an error")
	}
}

func TestAsyncComputedDisposeDropsResult(t *testing.T) {
	defaultScheduler(t)

	gate := make(chan struct{})
	c := NewAsyncComputed(
		func() int { return 1 },
		func(ctx context.Context, k int) (int, error) {
			<-gate
			return k, nil
		},
	)
	_, _ = c.Lookup()
	c.Dispose()

	close(gate)
	waitDelivered(t)
	if _, ok := c.Lookup(); ok {
		t.Error("disposed computed must not accept a late result")
	}
}
