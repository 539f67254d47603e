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

package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gatehouse-io/gatehouse/pkg/defaults"
)

// record tracks one key's usage within its current window.
type record struct {
	count int
	reset time.Time
}

// Decision is the outcome of an admission check. The fields map directly to
// the X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset headers.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// ResetUnix returns the window reset time as Unix seconds.
func (d Decision) ResetUnix() int64 {
	return d.Reset.Unix()
}

// Stats is a point-in-time summary of limiter state.
type Stats struct {
	Keys    int    `json:"keys"`
	Allowed uint64 `json:"allowed"`
	Denied  uint64 `json:"denied"`
	Evicted uint64 `json:"evicted"`
}

// Option defines a configuration option for Limiter.
type Option func(*Limiter)

// WithWindow sets the fixed-window duration. Non-positive values are
// replaced with the default.
func WithWindow(window time.Duration) Option {
	return func(l *Limiter) {
		l.window = window
	}
}

// WithMax sets the number of requests admitted per key per window.
// Non-positive values are replaced with the default.
func WithMax(max int) Option {
	return func(l *Limiter) {
		l.max = max
	}
}

// WithSweepInterval overrides the background sweep interval used by Run.
func WithSweepInterval(interval time.Duration) Option {
	return func(l *Limiter) {
		l.sweepInterval = interval
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// Limiter tracks per-key request usage within fixed windows.
// It is safe for concurrent use by multiple goroutines.
type Limiter struct {
	window        time.Duration
	max           int
	sweepInterval time.Duration
	now           func() time.Time

	mu      sync.Mutex
	entries map[string]record
	allowed uint64
	denied  uint64
	evicted uint64
}

// New creates a Limiter with the specified options.
func New(options ...Option) *Limiter {
	l := &Limiter{
		window:  defaults.RateLimitWindow,
		max:     defaults.RateLimitMax,
		now:     time.Now,
		entries: make(map[string]record),
	}

	for _, opt := range options {
		opt(l)
	}

	if l.window <= 0 {
		l.window = defaults.RateLimitWindow
	}
	if l.max <= 0 {
		l.max = defaults.RateLimitMax
	}
	if l.sweepInterval <= 0 {
		l.sweepInterval = time.Duration(defaults.RateLimitSweepFactor) * l.window
	}
	if l.now == nil {
		l.now = time.Now
	}

	return l
}

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Max returns the configured per-window maximum.
func (l *Limiter) Max() int {
	return l.max
}

// Allow performs an admission check for key and returns the decision.
//
// A fresh window is opened when the key is unseen or its window has expired.
// Within an open window, requests below the maximum are admitted and counted.
// At the maximum, the request is denied and limiter state is left untouched.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.entries[key]
	if !ok || !now.Before(rec.reset) {
		rec = record{count: 1, reset: now.Add(l.window)}
		l.entries[key] = rec
		l.allowed++
		return Decision{
			Allowed:   true,
			Limit:     l.max,
			Remaining: l.max - 1,
			Reset:     rec.reset,
		}
	}

	if rec.count < l.max {
		rec.count++
		l.entries[key] = rec
		l.allowed++
		return Decision{
			Allowed:   true,
			Limit:     l.max,
			Remaining: l.max - rec.count,
			Reset:     rec.reset,
		}
	}

	// Denied requests must not touch the entry, so the window is never
	// extended by rejected traffic.
	l.denied++
	return Decision{
		Allowed:   false,
		Limit:     l.max,
		Remaining: 0,
		Reset:     rec.reset,
	}
}

// Sweep removes entries whose windows have expired and returns the number
// removed.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, rec := range l.entries {
		if !now.Before(rec.reset) {
			delete(l.entries, key)
			removed++
		}
	}
	l.evicted += uint64(removed)
	return removed
}

// Run sweeps expired entries on the configured interval until ctx is
// canceled. It always returns nil.
func (l *Limiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.sweepInterval)
	defer ticker.Stop()

	slog.Debug("rate limiter sweeper started",
		"window", l.window,
		"max", l.max,
		"interval", l.sweepInterval,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("rate limiter sweeper stopped")
			return nil
		case <-ticker.C:
			if removed := l.Sweep(); removed > 0 {
				slog.Debug("swept expired rate limit entries", "removed", removed)
			}
		}
	}
}

// Stats returns a snapshot of limiter counters.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Keys:    len(l.entries),
		Allowed: l.allowed,
		Denied:  l.denied,
		Evicted: l.evicted,
	}
}

// Close clears all per-key state. It is idempotent and safe to call at any
// point during shutdown; checks arriving afterwards simply open fresh
// windows. Lifetime counters are preserved.
func (l *Limiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.entries)
}
