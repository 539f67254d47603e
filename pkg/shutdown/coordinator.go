// Copyright (c) 2026, Gatehouse Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package shutdown coordinates graceful teardown of server resources.
//
// A Coordinator runs two phases when triggered: drain steps execute
// sequentially in registration order (stop accepting work, let in-flight
// requests finish), then cleanup steps execute concurrently (close caches,
// stop background workers, flush logs). Step failures are logged and counted
// but never abort the sequence or surface to callers; once triggered, the
// coordinator always runs to completion.
//
// Shutdown is one-shot: the first call executes the sequence, and any
// concurrent or later calls simply wait for that execution to finish.
package shutdown

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// CleanupFunc releases one resource. The context carries the shutdown
// deadline; implementations should abandon work when it expires.
type CleanupFunc func(ctx context.Context) error

type step struct {
	name string
	fn   CleanupFunc
}

// Option defines a configuration option for Coordinator.
type Option func(*Coordinator)

// WithTimeout bounds the whole shutdown sequence when the caller's context
// has no deadline of its own.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		c.timeout = timeout
	}
}

// Coordinator executes registered drain and cleanup steps exactly once.
type Coordinator struct {
	timeout time.Duration

	mu       sync.Mutex
	drains   []step
	cleanups []step

	triggered atomic.Bool
	done      chan struct{}
	failures  atomic.Int64
}

// New creates a Coordinator with the specified options.
func New(options ...Option) *Coordinator {
	c := &Coordinator{
		done: make(chan struct{}),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// RegisterDrain adds a sequential drain step. Drain steps run before any
// cleanup, in the order they were registered. Registration after shutdown
// has been triggered is ignored.
func (c *Coordinator) RegisterDrain(name string, fn CleanupFunc) {
	if c.triggered.Load() {
		slog.Warn("drain step registered after shutdown, ignoring", "name", name)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drains = append(c.drains, step{name: name, fn: fn})
}

// Register adds a concurrent cleanup step, run after all drain steps have
// finished. Registration after shutdown has been triggered is ignored.
func (c *Coordinator) Register(name string, fn CleanupFunc) {
	if c.triggered.Load() {
		slog.Warn("cleanup step registered after shutdown, ignoring", "name", name)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanups = append(c.cleanups, step{name: name, fn: fn})
}

// Shutdown runs the drain steps in order, then all cleanup steps
// concurrently. The first caller executes the sequence; every other caller
// blocks until it completes. Step errors are logged, not returned.
func (c *Coordinator) Shutdown(ctx context.Context) {
	if !c.triggered.CompareAndSwap(false, true) {
		<-c.done
		return
	}
	defer close(c.done)

	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		if _, has := ctx.Deadline(); !has {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	c.mu.Lock()
	drains := c.drains
	cleanups := c.cleanups
	c.mu.Unlock()

	started := time.Now()
	slog.Info("shutdown started", "drains", len(drains), "cleanups", len(cleanups))

	for _, s := range drains {
		if err := s.fn(ctx); err != nil {
			c.failures.Add(1)
			slog.Error("drain step failed", "name", s.name, "error", err)
		}
	}

	var g errgroup.Group
	for _, s := range cleanups {
		s := s // per-iteration copy; go.mod targets go 1.21 (pre-1.22 loopvar)
		g.Go(func() error {
			if err := s.fn(ctx); err != nil {
				c.failures.Add(1)
				slog.Error("cleanup step failed", "name", s.name, "error", err)
			}
			return nil
		})
	}
	// Closures swallow errors above; Wait only synchronizes.
	_ = g.Wait()

	slog.Info("shutdown complete",
		"duration", time.Since(started),
		"failures", c.failures.Load(),
	)
}

// Done returns a channel closed once the shutdown sequence has completed.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Triggered reports whether shutdown has started.
func (c *Coordinator) Triggered() bool {
	return c.triggered.Load()
}

// Failures returns the number of steps that returned an error.
func (c *Coordinator) Failures() int {
	return int(c.failures.Load())
}
