package reactive

import (
	"errors"
	"testing"
)

func TestComputedMemoization(t *testing.T) {
	calls := 0
	a := NewState(1)
	b := NewComputed(func() int {
		calls++
		return a.Get() * 2
	})

	if b.Get() != 2 {
		t.Errorf("expected 2, got %d", b.Get())
	}
	_ = b.Get()
	if calls != 1 {
		t.Errorf("expected producer to run once, ran %d times", calls)
	}

	a.Set(2)
	a.Set(3)
	if calls != 1 {
		t.Errorf("computed must be lazy, ran %d times before read", calls)
	}
	if b.Get() != 6 {
		t.Errorf("expected 6, got %d", b.Get())
	}
	if calls != 2 {
		t.Errorf("expected 2 runs after change, got %d", calls)
	}
}

func TestComputedChain(t *testing.T) {
	count := NewState(2)
	doubled := NewComputed(func() int { return count.Get() * 2 })
	quadrupled := NewComputed(func() int { return doubled.Get() * 2 })

	if quadrupled.Get() != 8 {
		t.Errorf("expected 8, got %d", quadrupled.Get())
	}
	count.Set(3)
	if quadrupled.Get() != 12 {
		t.Errorf("expected 12, got %d", quadrupled.Get())
	}
}

func TestComputedValueCutoff(t *testing.T) {
	n := NewState(1)
	parity := NewComputed(func() int { return n.Get() % 2 })

	downstream := 0
	label := NewComputed(func() string {
		downstream++
		if parity.Get() == 0 {
			return "even"
		}
		return "odd"
	})

	if label.Get() != "odd" {
		t.Fatalf("expected odd")
	}

	n.Set(3)
	if label.Get() != "odd" {
		t.Fatalf("expected odd")
	}
	if downstream != 1 {
		t.Errorf("unchanged parity must not recompute label, ran %d times", downstream)
	}

	n.Set(4)
	if label.Get() != "even" {
		t.Errorf("expected even")
	}
	if downstream != 2 {
		t.Errorf("expected 2 label runs, got %d", downstream)
	}
}

func TestComputedDynamicDependencies(t *testing.T) {
	useA := NewState(true)
	a := NewState("a")
	b := NewState("b")
	calls := 0
	pick := NewComputed(func() string {
		calls++
		if useA.Get() {
			return a.Get()
		}
		return b.Get()
	})

	if pick.Get() != "a" {
		t.Fatal("expected a")
	}

	b.Set("B")
	_ = pick.Get()
	if calls != 1 {
		t.Errorf("b is not a dependency yet, producer ran %d times", calls)
	}

	useA.Set(false)
	if pick.Get() != "B" {
		t.Errorf("expected B, got %s", pick.Get())
	}

	a.Set("A")
	_ = pick.Get()
	if calls != 2 {
		t.Errorf("a was dropped as a dependency, producer ran %d times", calls)
	}
}

func TestComputedCircularDirect(t *testing.T) {
	var self *Computed[int]
	self = NewComputed(func() int { return self.Get() + 1 })

	_, err := self.Read()
	var cme *CircularMutationError
	if !errors.As(err, &cme) {
		t.Fatalf("expected CircularMutationError, got %v", err)
	}
	if cme.Node != self.ID() {
		t.Errorf("expected node %d, got %d", self.ID(), cme.Node)
	}
}

func TestComputedCircularIndirect(t *testing.T) {
	var a, b *Computed[int]
	a = NewComputed(func() int { return b.Get() + 1 })
	b = NewComputed(func() int { return a.Get() + 1 })

	defer func() {
		r := recover()
		err, ok := r.(error)
		var cme *CircularMutationError
		if !ok || !errors.As(err, &cme) {
			t.Fatalf("expected CircularMutationError panic, got %v", r)
		}
	}()
	_ = a.Get()
	t.Fatal("expected panic")
}

func TestComputedProducerErrorKeepsCache(t *testing.T) {
	fail := NewState(false)
	n := NewState(1)
	calls := 0
	c := NewComputedE(func() (int, error) {
		calls++
		if fail.Get() {
			return 0, errors.New("boom")
		}
		return n.Get() * 10, nil
	})

	if c.Get() != 10 {
		t.Fatalf("expected 10")
	}

	fail.Set(true)
	v, err := c.Read()
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *ProducerError
	if !errors.As(err, &pe) || pe.Err.Error() != "boom" {
		t.Errorf("expected ProducerError wrapping boom, got %v", err)
	}
	if v != 10 {
		t.Errorf("last good value should be kept, got %d", v)
	}

	// The next read retries even though nothing changed.
	before := calls
	_, _ = c.Read()
	if calls != before+1 {
		t.Errorf("expected a retry on next read")
	}

	fail.Set(false)
	if got := c.Get(); got != 10 {
		t.Errorf("expected recovery to 10, got %d", got)
	}
}

func TestComputedErrorReachesEffects(t *testing.T) {
	a := NewState(1)
	c := NewComputedE(func() (int, error) {
		v := a.Get()
		if v < 0 {
			return 0, errors.New("negative")
		}
		return v, nil
	})

	var seen []int
	var errs []error
	dispose := NewEffect(func() Cleanup {
		v, err := c.Read()
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		seen = append(seen, v)
		return nil
	})
	defer dispose()

	a.Set(-1)
	var pe *ProducerError
	if len(errs) != 1 || !errors.As(errs[0], &pe) {
		t.Fatalf("expected the effect to observe a ProducerError, got %v", errs)
	}

	a.Set(2)
	if len(seen) != 2 || seen[1] != 2 {
		t.Errorf("expected recovery to be observed, got %v", seen)
	}
}

func TestComputedErrorPropagatesThroughSet(t *testing.T) {
	a := NewState(1)
	c := NewComputedE(func() (int, error) {
		if a.Get() < 0 {
			return 0, errors.New("negative")
		}
		return a.Get(), nil
	})
	dispose := NewEffect(func() Cleanup {
		_ = c.Get()
		return nil
	})
	defer dispose()

	defer func() {
		err, _ := recover().(error)
		var pe *ProducerError
		if !errors.As(err, &pe) {
			t.Errorf("expected Set to panic with a ProducerError, got %v", err)
		}
	}()
	a.Set(-1)
	t.Fatal("expected panic")
}

func TestComputedProducerPanicPropagates(t *testing.T) {
	boom := NewState(false)
	c := NewComputed(func() string {
		if boom.Get() {
			panic("kaboom")
		}
		return "ok"
	})
	if c.Get() != "ok" {
		t.Fatal("expected ok")
	}

	boom.Set(true)
	func() {
		defer func() {
			if r := recover(); r != "kaboom" {
				t.Errorf("expected kaboom, got %v", r)
			}
		}()
		_ = c.Get()
	}()

	boom.Set(false)
	if c.Get() != "ok" {
		t.Error("expected recovery after panic")
	}
}

func TestComputedDispose(t *testing.T) {
	n := NewState(1)
	c := NewComputed(func() int { return n.Get() })
	_ = c.Get()
	if n.n.subscriberCount() != 1 {
		t.Fatalf("expected computed to subscribe to its source")
	}

	c.Dispose()
	if n.n.subscriberCount() != 0 {
		t.Errorf("dispose should unsubscribe, got %d subscribers", n.n.subscriberCount())
	}
	n.Set(2)
	if c.Get() != 1 {
		t.Errorf("disposed computed keeps its last value, got %d", c.Get())
	}
}

func TestComputedInvalidateForcesRerun(t *testing.T) {
	calls := 0
	c := NewComputed(func() int {
		calls++
		return 1
	})
	_ = c.Get()
	c.Invalidate()
	_ = c.Get()
	if calls != 2 {
		t.Errorf("expected 2 runs, got %d", calls)
	}
}

func TestComputedGetAny(t *testing.T) {
	c := NewComputed(func() string { return "x" })
	var sig AnySignal = c
	if sig.GetAny() != "x" {
		t.Errorf("expected x, got %v", sig.GetAny())
	}
}
