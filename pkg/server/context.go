package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gatehouse-io/gatehouse/pkg/router"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	requestIDKey contextKey = "requestID"
)

// GetRequestID retrieves the request ID from context, or an empty string
// when the request never passed admission.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Context carries one admitted, parsed request through dispatch.
type Context struct {
	// Request is the underlying HTTP request, for cancellation and
	// anything the parsed fields do not cover.
	Request *http.Request

	// RequestID is the ID assigned after admission.
	RequestID string

	Method string
	Path   string

	// Params holds values captured by :name pattern segments.
	Params router.Params

	// Query maps each query key to a string, or to a []string when the
	// key repeats.
	Query map[string]any

	Headers http.Header

	// Body is the decoded JSON object body. It is never nil; requests
	// without a JSON object body get an empty map.
	Body map[string]any

	// RawBody is the body as received, for handlers that need the exact
	// bytes.
	RawBody []byte
}

// Param returns a captured pattern value, or an empty string.
func (c *Context) Param(name string) string {
	return c.Params[name]
}

// newRequestContext assembles the dispatch context for an admitted request.
func newRequestContext(r *http.Request, requestID string, params router.Params, raw []byte) *Context {
	return &Context{
		Request:   r,
		RequestID: requestID,
		Method:    normalizeMethod(r.Method),
		Path:      r.URL.Path,
		Params:    params,
		Query:     parseQuery(r.URL),
		Headers:   r.Header,
		Body:      parseBody(r.Header.Get("Content-Type"), raw),
		RawBody:   raw,
	}
}

// normalizeMethod uppercases the request method, defaulting to GET when the
// transport supplied none.
func normalizeMethod(m string) string {
	if m == "" {
		return http.MethodGet
	}
	return strings.ToUpper(m)
}

// parseQuery folds the raw query into a map where single-valued keys are
// strings and repeated keys are string slices. Malformed pairs are dropped
// and the rest of the query is kept.
func parseQuery(u *url.URL) map[string]any {
	values := u.Query()
	q := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) == 1 {
			q[k] = v[0]
			continue
		}
		q[k] = v
	}
	return q
}

// parseBody decodes a JSON object body into a map. Bodies are decoded only
// when the declared content type contains application/json; anything else,
// including malformed JSON and non-object values, yields an empty map so
// handlers never see a nil body.
func parseBody(contentType string, raw []byte) map[string]any {
	if len(raw) == 0 || !strings.Contains(contentType, "application/json") {
		return map[string]any{}
	}
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return map[string]any{}
	}
	return body
}
