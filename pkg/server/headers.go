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

package server

import "github.com/gatehouse-io/gatehouse/pkg/defaults"

// Canonical names of the security headers admitted responses carry.
const (
	HeaderContentTypeOptions    = "X-Content-Type-Options"
	HeaderFrameOptions          = "X-Frame-Options"
	HeaderXSSProtection         = "X-XSS-Protection"
	HeaderStrictTransport       = "Strict-Transport-Security"
	HeaderContentSecurityPolicy = "Content-Security-Policy"
)

// identityHeaders are stripped from responses when hide_identity is on.
var identityHeaders = []string{"Server", "X-Powered-By"}

// headerPair is one resolved header ready to stamp.
type headerPair struct {
	name  string
	value string
}

// resolveSecurityHeaders flattens the config into the ordered list of
// headers the pipeline stamps on admitted responses. Headers left unset in
// the config are omitted. Content-Security-Policy has no built-in value, so
// it only appears when configured with a non-empty policy string.
func resolveSecurityHeaders(cfg SecurityConfig) []headerPair {
	pairs := make([]headerPair, 0, 5)

	if v, ok := cfg.ContentTypeOptions.Resolve(defaults.SecurityContentTypeOptions); ok {
		pairs = append(pairs, headerPair{HeaderContentTypeOptions, v})
	}
	if v, ok := cfg.FrameOptions.Resolve(defaults.SecurityFrameOptions); ok {
		pairs = append(pairs, headerPair{HeaderFrameOptions, v})
	}
	if v, ok := cfg.XSSProtection.Resolve(defaults.SecurityXSSProtection); ok {
		pairs = append(pairs, headerPair{HeaderXSSProtection, v})
	}
	if v, ok := cfg.StrictTransport.Resolve(defaults.SecurityHSTS); ok {
		pairs = append(pairs, headerPair{HeaderStrictTransport, v})
	}
	if v, ok := cfg.ContentSecurityPolicy.Resolve(""); ok && v != "" {
		pairs = append(pairs, headerPair{HeaderContentSecurityPolicy, v})
	}

	return pairs
}
