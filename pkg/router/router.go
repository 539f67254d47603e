package router

import (
	"fmt"
	"net/url"
	"strings"
)

// Methods lists the HTTP methods the router accepts, in canonical order.
// UPDATE is carried alongside the standard verbs for compatibility with
// clients that use it in place of PATCH.
var Methods = []string{"GET", "POST", "PUT", "UPDATE", "DELETE"}

// Params holds decoded path parameters captured during a lookup, keyed by
// the parameter name from the pattern (without the ':' sigil).
type Params map[string]string

// segment is one element of a compiled pattern. A param segment matches any
// path segment and captures it; a literal segment must match exactly.
type segment struct {
	literal string
	param   string
	isParam bool
}

// route pairs a registered pattern with its handler. Routes keep their
// insertion position for the lifetime of the table.
type route[H any] struct {
	pattern  string
	segments []segment
	handler  H
}

// table is the insertion-ordered route list for a single method.
type table[H any] struct {
	routes []route[H]
	index  map[string]int
}

// Router dispatches paths to handlers using first-match-wins lookup over
// insertion-ordered per-method tables.
//
// Patterns are matched segment by segment: literal segments compare exactly
// and case-sensitively against the raw path segment, and ':name' segments
// match any single segment, capturing its percent-decoded value. Empty
// segments are discarded on both sides, so '/users', 'users/', and
// '//users//' are the same shape. A pattern only matches paths with the
// same segment count.
//
// Registering a pattern that already exists for the method replaces the
// handler but keeps the pattern's original position in the match order.
type Router[H any] struct {
	tables map[string]*table[H]
}

// New creates an empty Router.
func New[H any]() *Router[H] {
	tables := make(map[string]*table[H], len(Methods))
	for _, m := range Methods {
		tables[m] = &table[H]{index: make(map[string]int)}
	}
	return &Router[H]{tables: tables}
}

// Handle registers handler for the given method and pattern. The method must
// be one of Methods (uppercase). Duplicate registration overwrites the
// existing handler in place.
func (r *Router[H]) Handle(method, pattern string, handler H) error {
	t, ok := r.tables[method]
	if !ok {
		return fmt.Errorf("unsupported method %q (supported: %s)", method, strings.Join(Methods, ", "))
	}

	if i, exists := t.index[pattern]; exists {
		t.routes[i].handler = handler
		return nil
	}

	t.index[pattern] = len(t.routes)
	t.routes = append(t.routes, route[H]{
		pattern:  pattern,
		segments: compile(pattern),
		handler:  handler,
	})
	return nil
}

// Lookup finds the first registered route for method whose pattern matches
// path, in registration order. It returns the handler, the captured
// parameters, and whether a match was found.
func (r *Router[H]) Lookup(method, path string) (H, Params, bool) {
	var zero H

	t, ok := r.tables[method]
	if !ok {
		return zero, nil, false
	}

	parts := split(path)
	for i := range t.routes {
		if params, ok := match(t.routes[i].segments, parts); ok {
			return t.routes[i].handler, params, true
		}
	}
	return zero, nil, false
}

// Routes returns every registered route as "METHOD pattern", methods in
// canonical order and patterns in registration order.
func (r *Router[H]) Routes() []string {
	var out []string
	for _, m := range Methods {
		for i := range r.tables[m].routes {
			out = append(out, m+" "+r.tables[m].routes[i].pattern)
		}
	}
	return out
}

// Len returns the total number of registered routes across all methods.
func (r *Router[H]) Len() int {
	n := 0
	for _, m := range Methods {
		n += len(r.tables[m].routes)
	}
	return n
}

// compile parses a pattern into matchable segments.
func compile(pattern string) []segment {
	parts := split(pattern)
	segments := make([]segment, 0, len(parts))
	for _, p := range parts {
		if strings.HasPrefix(p, ":") {
			segments = append(segments, segment{param: p[1:], isParam: true})
			continue
		}
		segments = append(segments, segment{literal: p})
	}
	return segments
}

// split breaks a path into its non-empty segments. Leading, trailing, and
// repeated slashes all collapse away.
func split(path string) []string {
	raw := strings.Split(path, "/")
	parts := raw[:0]
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// match compares compiled pattern segments against path segments. Segment
// counts must agree exactly. Param captures are percent-decoded; if decoding
// fails the raw segment is kept.
func match(segments []segment, parts []string) (Params, bool) {
	if len(segments) != len(parts) {
		return nil, false
	}

	var params Params
	for i, seg := range segments {
		if !seg.isParam {
			if seg.literal != parts[i] {
				return nil, false
			}
			continue
		}
		if params == nil {
			params = make(Params, len(segments))
		}
		value, err := url.PathUnescape(parts[i])
		if err != nil {
			value = parts[i]
		}
		params[seg.param] = value
	}
	return params, true
}
