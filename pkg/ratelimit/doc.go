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

// Package ratelimit implements a fixed-window request limiter keyed by an
// arbitrary string (typically the client address).
//
// # Algorithm
//
// Each key owns a window of fixed duration with a counter:
//
//   - The first request for a key, or any request arriving at or after the
//     window's reset time, opens a fresh window: the counter is set to 1 and
//     the reset time to now plus the window duration.
//   - Requests inside an open window increment the counter while it is below
//     the maximum.
//   - Once the counter reaches the maximum, further requests in that window
//     are denied. A denied request never modifies limiter state, so denials
//     do not extend the window or consume capacity.
//
// The returned Decision carries the limit, the remaining allowance, and the
// window reset time, ready to be surfaced as X-RateLimit-* response headers.
//
// # Properties
//
// Fixed windows trade burst smoothing for simplicity. A client can issue up
// to the maximum at the very end of one window and the maximum again at the
// start of the next, observing up to twice the configured rate across the
// boundary. This is inherent to the algorithm and accepted here; callers that
// need strict pacing should place an upstream shaper in front.
//
// State is process-local. When multiple server processes sit behind one
// address, each enforces its own budget and the effective limit is the
// per-process maximum times the process count.
//
// # Eviction
//
// Expired entries are removed by Sweep, either on demand or via Run, which
// sweeps on a fixed interval (by default twice the window duration) until the
// context is canceled. Without sweeping, memory grows with the number of
// distinct keys ever seen. Close drops all per-key state at teardown while
// preserving the lifetime counters.
package ratelimit
