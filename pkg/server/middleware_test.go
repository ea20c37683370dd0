// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

func newTestServerStruct(apiKey string) *Server {
	cfg := NewConfig()
	cfg.APIKey = apiKey
	return &Server{
		config:      cfg,
		rateLimiter: rate.NewLimiter(100, 200),
	}
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDMiddleware_GeneratesNewID(t *testing.T) {
	s := newTestServerStruct("")

	var capturedRequestID string
	handler := s.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedRequestID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if capturedRequestID == "" {
		t.Error("expected request ID to be generated")
	}
	if _, err := uuid.Parse(capturedRequestID); err != nil {
		t.Errorf("expected valid UUID, got: %s", capturedRequestID)
	}
	if rec.Header().Get("X-Request-Id") != capturedRequestID {
		t.Errorf("expected X-Request-Id header to be %s, got %s",
			capturedRequestID, rec.Header().Get("X-Request-Id"))
	}
}

func TestRequestIDMiddleware_UsesProvidedID(t *testing.T) {
	s := newTestServerStruct("")

	providedID := uuid.New().String()
	var capturedRequestID string
	handler := s.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedRequestID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-Id", providedID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if capturedRequestID != providedID {
		t.Errorf("expected request ID %s, got %s", providedID, capturedRequestID)
	}
}

func TestRequestIDMiddleware_ReplacesInvalidID(t *testing.T) {
	s := newTestServerStruct("")

	var capturedRequestID string
	handler := s.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedRequestID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-Id", "invalid-not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if _, err := uuid.Parse(capturedRequestID); err != nil {
		t.Errorf("expected valid UUID, got: %s", capturedRequestID)
	}
	if capturedRequestID == "invalid-not-a-uuid" {
		t.Error("expected invalid UUID to be replaced")
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	s := newTestServerStruct("secret")

	tests := []struct {
		name       string
		method     string
		target     string
		header     string
		wantStatus int
	}{
		{name: "root exempt", method: http.MethodGet, target: "/", wantStatus: http.StatusOK},
		{name: "root exempt with bad key", method: http.MethodGet, target: "/?api_key=wrong", wantStatus: http.StatusOK},
		{name: "missing key", method: http.MethodGet, target: "/health", wantStatus: http.StatusUnauthorized},
		{name: "wrong header", method: http.MethodPost, target: "/krishimitra", header: "nope", wantStatus: http.StatusUnauthorized},
		{name: "valid header", method: http.MethodPost, target: "/krishimitra", header: "secret", wantStatus: http.StatusOK},
		{name: "valid query", method: http.MethodGet, target: "/health?api_key=secret", wantStatus: http.StatusOK},
		{name: "wrong query", method: http.MethodGet, target: "/health?api_key=nope", wantStatus: http.StatusUnauthorized},
		{name: "header wins over bad query", method: http.MethodGet, target: "/health?api_key=nope", header: "secret", wantStatus: http.StatusOK},
		{name: "bad header wins over good query", method: http.MethodGet, target: "/health?api_key=secret", header: "nope", wantStatus: http.StatusUnauthorized},
		{name: "key is case sensitive", method: http.MethodGet, target: "/health", header: "SECRET", wantStatus: http.StatusUnauthorized},
		{name: "unknown path", method: http.MethodDelete, target: "/anything", wantStatus: http.StatusUnauthorized},
		{name: "trailing slash is not root", method: http.MethodGet, target: "/health/", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := s.apiKeyMiddleware(okHandler(&called))

			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-Api-Key", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if called {
					t.Error("handler should not be called")
				}
				want := `{"error":"Unauthorized — invalid or missing API key."}` + "\n"
				if rec.Body.String() != want {
					t.Errorf("expected body %q, got %q", want, rec.Body.String())
				}
			} else if !called {
				t.Error("expected handler to be called")
			}
		})
	}
}

func TestAPIKeyMiddleware_EmptyConfiguredKeyRejectsAll(t *testing.T) {
	s := newTestServerStruct("")
	handler := s.apiKeyMiddleware(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/health?api_key=", nil)
	req.Header.Set("X-Api-Key", "")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestRateLimitMiddleware_AllowsRequests(t *testing.T) {
	s := newTestServerStruct("")

	called := false
	handler := s.rateLimitMiddleware(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/krishimitra", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	for _, h := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("expected %s header", h)
		}
	}
}

func TestRateLimitMiddleware_RejectsWhenExceeded(t *testing.T) {
	s := newTestServerStruct("")
	s.rateLimiter = rate.NewLimiter(0, 0)

	called := false
	handler := s.rateLimitMiddleware(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/krishimitra", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if called {
		t.Error("handler should not be called when rate limited")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header when rate limited")
	}
}

func TestPanicRecoveryMiddleware_RecoversPanic(t *testing.T) {
	s := newTestServerStruct("")

	handler := s.panicRecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	want := `{"error":"test panic"}` + "\n"
	if rec.Body.String() != want {
		t.Errorf("expected body %q, got %q", want, rec.Body.String())
	}
}

func TestPanicRecoveryMiddleware_PassesNormalRequests(t *testing.T) {
	s := newTestServerStruct("")

	called := false
	handler := s.panicRecoveryMiddleware(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestLoggingMiddleware_PassesStatus(t *testing.T) {
	s := newTestServerStruct("")

	handler := s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rec.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServerStruct("")

	t.Run("simple request", func(t *testing.T) {
		handler := s.corsMiddleware()(okHandler(nil))

		req := httptest.NewRequest(http.MethodPost, "/krishimitra", nil)
		req.Header.Set("Origin", "https://farmer.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("expected Access-Control-Allow-Origin *, got %q", got)
		}
	})

	t.Run("preflight passes through", func(t *testing.T) {
		called := false
		handler := s.corsMiddleware()(okHandler(&called))

		req := httptest.NewRequest(http.MethodOptions, "/krishimitra", nil)
		req.Header.Set("Origin", "https://farmer.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "x-api-key, content-type")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if !called {
			t.Error("expected preflight to reach the next handler")
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("expected Access-Control-Allow-Origin *, got %q", got)
		}
	})
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	if rw.Status() != http.StatusOK {
		t.Errorf("expected default status 200, got %d", rw.Status())
	}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusBadRequest)
	if _, err := rw.Write([]byte("ok")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	rw.Flush()

	if rw.Status() != http.StatusCreated {
		t.Errorf("expected first status 201 to win, got %d", rw.Status())
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected recorder status 201, got %d", rec.Code)
	}
	if rw.Unwrap() != rec {
		t.Error("expected Unwrap to return the underlying writer")
	}
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("expected hijack to fail on a recorder")
	}
}
