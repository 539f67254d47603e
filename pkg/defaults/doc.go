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

// Package defaults provides centralized configuration constants for gatehouse.
//
// This package defines timeout values, admission-control parameters, and other
// configuration defaults used across the codebase. Centralizing these values
// ensures consistency and makes tuning easier.
//
// # Categories
//
// Defaults are organized by component:
//
//   - Server timeouts: For the HTTP listener configuration
//   - Admission defaults: For the fixed-window rate limiter
//   - Auth defaults: For token minting and password hashing
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/gatehouse-io/gatehouse/pkg/defaults"
//
//	srv := &http.Server{ReadTimeout: defaults.ServerReadTimeout}
package defaults
