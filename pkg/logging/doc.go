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

// Package logging provides structured logging utilities built on log/slog.
//
// All loggers emit JSON records to stderr and carry module and version
// attributes on every record, so log aggregation can attribute entries
// without relying on message content.
//
// The typical entry point is SetDefaultStructuredLogger, which installs the
// process-wide default:
//
//	logging.SetDefaultStructuredLogger("gatehoused", version)
//	slog.Info("server starting", "address", addr)
//
// Verbosity is controlled by the LOG_LEVEL environment variable (debug, info,
// warn, error). SetDefaultStructuredLoggerWithLevel accepts an explicit level
// for callers that resolve configuration themselves. Debug level additionally
// records source file and line.
//
// NewLogLogger bridges to components that only accept the standard library
// *log.Logger, such as http.Server.ErrorLog.
package logging
