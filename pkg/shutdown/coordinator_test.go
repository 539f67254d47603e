package shutdown

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCoordinator_DrainsBeforeCleanups(t *testing.T) {
	c := New()

	var mu sync.Mutex
	var order []string
	record := func(name string) CleanupFunc {
		return func(ctx context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	c.Register("cleanup-a", record("cleanup-a"))
	c.RegisterDrain("drain-1", record("drain-1"))
	c.RegisterDrain("drain-2", record("drain-2"))
	c.Register("cleanup-b", record("cleanup-b"))

	c.Shutdown(context.Background())

	if len(order) != 4 {
		t.Fatalf("expected 4 steps, got %d: %v", len(order), order)
	}
	if order[0] != "drain-1" || order[1] != "drain-2" {
		t.Errorf("drain steps must run first in registration order, got %v", order)
	}
	// Cleanup order is unspecified, but both must have run after the drains.
	rest := map[string]bool{order[2]: true, order[3]: true}
	if !rest["cleanup-a"] || !rest["cleanup-b"] {
		t.Errorf("cleanups missing or out of phase: %v", order)
	}
}

func TestCoordinator_CleanupsRunConcurrently(t *testing.T) {
	c := New()

	const naptime = 50 * time.Millisecond
	for i := 0; i < 3; i++ {
		c.Register("sleeper", func(ctx context.Context) error {
			time.Sleep(naptime)
			return nil
		})
	}

	start := time.Now()
	c.Shutdown(context.Background())
	elapsed := time.Since(start)

	// Three sequential sleeps would take 150ms; concurrent execution
	// should finish close to a single naptime.
	if elapsed > 2*naptime {
		t.Errorf("cleanups appear sequential: took %v", elapsed)
	}
}

func TestCoordinator_FailuresAreContained(t *testing.T) {
	c := New()

	var succeeded atomic.Int32
	c.RegisterDrain("failing-drain", func(ctx context.Context) error {
		return errors.New("listener already closed")
	})
	c.Register("failing-cleanup", func(ctx context.Context) error {
		return errors.New("flush failed")
	})
	c.Register("healthy-cleanup", func(ctx context.Context) error {
		succeeded.Add(1)
		return nil
	})

	c.Shutdown(context.Background())

	if succeeded.Load() != 1 {
		t.Error("healthy cleanup should run despite sibling failures")
	}
	if c.Failures() != 2 {
		t.Errorf("expected 2 recorded failures, got %d", c.Failures())
	}
}

func TestCoordinator_ShutdownIsOneShot(t *testing.T) {
	c := New()

	var runs atomic.Int32
	c.Register("counted", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	c.Shutdown(context.Background())
	c.Shutdown(context.Background())
	c.Shutdown(context.Background())

	if runs.Load() != 1 {
		t.Errorf("cleanup ran %d times, want 1", runs.Load())
	}
}

func TestCoordinator_ConcurrentShutdownCallsAllReturn(t *testing.T) {
	c := New()

	release := make(chan struct{})
	c.Register("gated", func(ctx context.Context) error {
		<-release
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Shutdown(context.Background())
		}()
	}

	// Let the callers pile up, then release the gated cleanup.
	time.Sleep(10 * time.Millisecond)
	close(release)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("concurrent Shutdown callers did not return")
	}

	select {
	case <-c.Done():
	default:
		t.Error("Done channel should be closed after shutdown")
	}
}

func TestCoordinator_RegistrationAfterTriggerIgnored(t *testing.T) {
	c := New()
	c.Shutdown(context.Background())

	var ran atomic.Bool
	c.Register("late", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	c.RegisterDrain("late-drain", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	// A second (no-op) shutdown must not pick up late registrations.
	c.Shutdown(context.Background())

	if ran.Load() {
		t.Error("steps registered after trigger must not run")
	}
}

func TestCoordinator_TimeoutAppliedToSteps(t *testing.T) {
	c := New(WithTimeout(20 * time.Millisecond))

	var sawDeadline atomic.Bool
	c.Register("deadline-check", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			sawDeadline.Store(true)
		}
		return nil
	})

	c.Shutdown(context.Background())

	if !sawDeadline.Load() {
		t.Error("cleanup context should carry the configured deadline")
	}
}

func TestCoordinator_NilContext(t *testing.T) {
	c := New()

	var ran atomic.Bool
	c.Register("tolerant", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	c.Shutdown(nil) //nolint:staticcheck // verifying nil-context tolerance

	if !ran.Load() {
		t.Error("shutdown should tolerate a nil context")
	}
	if !c.Triggered() {
		t.Error("Triggered should report true after shutdown")
	}
}

func TestCoordinator_EmptyShutdown(t *testing.T) {
	c := New()
	c.Shutdown(context.Background())

	select {
	case <-c.Done():
	default:
		t.Error("Done should close even with no registered steps")
	}
	if c.Failures() != 0 {
		t.Errorf("expected no failures, got %d", c.Failures())
	}
}
