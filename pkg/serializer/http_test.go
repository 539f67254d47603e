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

package serializer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testPayload struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func TestRespondJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	data := testPayload{Message: "success", Code: 200}

	RespondJSON(w, http.StatusOK, data)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var result testPayload
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if result.Message != data.Message || result.Code != data.Code {
		t.Errorf("unexpected payload: %+v", result)
	}
}

func TestRespondJSON_DifferentStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Created", http.StatusCreated},
		{"BadRequest", http.StatusBadRequest},
		{"NotFound", http.StatusNotFound},
		{"InternalServerError", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondJSON(w, tt.statusCode, testPayload{Message: tt.name, Code: tt.statusCode})

			if w.Code != tt.statusCode {
				t.Errorf("expected status %d, got %d", tt.statusCode, w.Code)
			}
		})
	}
}

func TestRespondJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()

	// Channels cannot be marshaled to JSON
	badData := make(chan int)

	RespondJSON(w, http.StatusOK, badData)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d for encoding error, got %d", http.StatusInternalServerError, w.Code)
	}
	if w.Body.Len() == 0 {
		t.Error("expected error message in body")
	}
}

func TestHttpReader_Read(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != HttpReaderUserAgent {
			t.Errorf("expected user agent %q, got %q", HttpReaderUserAgent, ua)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"hello","code":1}`))
	}))
	defer srv.Close()

	reader := NewHttpReader()
	data, err := reader.Read(srv.URL)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var payload testPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("failed to unmarshal fetched data: %v", err)
	}
	if payload.Message != "hello" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestHttpReader_ReadErrors(t *testing.T) {
	t.Run("empty url", func(t *testing.T) {
		reader := NewHttpReader()
		if _, err := reader.Read(""); err == nil {
			t.Fatal("expected error for empty url")
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		reader := NewHttpReader()
		if _, err := reader.Read(srv.URL); err == nil {
			t.Fatal("expected error for non-200 status")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		reader := NewHttpReader()
		if _, err := reader.ReadWithContext(ctx, srv.URL); err == nil {
			t.Fatal("expected error for canceled context")
		}
	})
}

func TestHttpReader_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("downloaded content"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "downloaded.txt")
	reader := NewHttpReader()
	if err := reader.Download(srv.URL, path); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read downloaded file: %v", err)
	}
	if string(content) != "downloaded content" {
		t.Errorf("unexpected file content: %q", content)
	}
}

func TestHttpReader_Options(t *testing.T) {
	reader := NewHttpReader(
		WithUserAgent("custom-agent/2.0"),
		WithTotalTimeout(5*time.Second),
		WithMaxIdleConns(50),
	)

	if reader.UserAgent != "custom-agent/2.0" {
		t.Errorf("expected custom user agent, got %q", reader.UserAgent)
	}
	if reader.Client.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", reader.Client.Timeout)
	}

	tr, ok := reader.Client.Transport.(*http.Transport)
	if !ok {
		t.Fatal("expected *http.Transport")
	}
	if tr.MaxIdleConns != 50 {
		t.Errorf("expected MaxIdleConns 50, got %d", tr.MaxIdleConns)
	}
}

func TestHttpReader_CustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 2 * time.Second}
	reader := NewHttpReader(WithClient(custom))

	if reader.Client != custom {
		t.Error("expected custom client to be used")
	}
	if reader.Client.Timeout != 2*time.Second {
		t.Errorf("custom client timeout should be preserved, got %v", reader.Client.Timeout)
	}
}
