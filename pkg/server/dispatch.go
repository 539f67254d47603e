package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gatehouse-io/gatehouse/pkg/errors"
	"github.com/gatehouse-io/gatehouse/pkg/serializer"
)

// maxBodyBytes caps how much request body dispatch will buffer.
const maxBodyBytes = 1 << 20

// dispatch buffers the body, resolves the route, and runs the handler.
// It is the innermost stage of the pipeline.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		if _, ok := err.(*http.MaxBytesError); ok {
			WriteError(w, r, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidRequest,
				"request body too large", false, nil)
			return
		}
		// The client went away mid-body; nothing useful to write.
		slog.Debug("request body read failed",
			"error", err,
			"requestId", GetRequestID(r.Context()))
		return
	}

	handler, params, ok := s.routes.Lookup(normalizeMethod(r.Method), r.URL.Path)
	if !ok {
		// Unmatched paths get a bare 404: no body, no Content-Type.
		w.WriteHeader(http.StatusNotFound)
		return
	}

	c := newRequestContext(r, GetRequestID(r.Context()), params, raw)
	s.writeResponse(w, r, handler(c))
}

// readBody buffers the whole request body, bounded by maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// writeResponse materializes a handler response. A nil response writes
// 204 No Content.
func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, resp *Response) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	if resp.Body == nil {
		w.WriteHeader(status)
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
		w.WriteHeader(status)

		var payload []byte
		switch b := resp.Body.(type) {
		case []byte:
			payload = b
		case string:
			payload = []byte(b)
		default:
			payload = fmt.Append(nil, b)
		}
		if _, err := w.Write(payload); err != nil {
			slog.Warn("failed to write response",
				"error", err,
				"requestId", GetRequestID(r.Context()))
		}
		return
	}

	serializer.RespondJSON(w, status, resp.Body)
}
