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
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testKey = "test-key"

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	base := []Option{
		WithName("krishimitra-test"),
		WithVersion("test"),
		WithAPIKey(testKey),
		WithRoutes(Route{
			Method:      http.MethodPost,
			Pattern:     "/krishimitra",
			RateLimited: true,
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"module":"qna_chain","answer":"ok"}`)
			}),
		}),
	}
	return New(append(base, opts...)...)
}

func do(t *testing.T, h http.Handler, method, target, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if key != "" {
		req.Header.Set(HeaderAPIKey, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	s := newTestServer(t)
	if s == nil {
		t.Fatal("expected server instance, got nil")
		return
	}

	if s.config == nil {
		t.Error("expected config to be initialized")
	}

	if s.httpServer == nil {
		t.Error("expected httpServer to be initialized")
	}

	if s.rateLimiter == nil {
		t.Error("expected rateLimiter to be initialized")
	}
}

func TestRootEndpoint(t *testing.T) {
	t.Run("descriptor", func(t *testing.T) {
		s := newTestServer(t, WithDescriptor(map[string]any{"message": "running"}))

		rec := do(t, s.Handler(), http.MethodGet, "/", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != `{"message":"running"}` {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("generated listing", func(t *testing.T) {
		s := newTestServer(t)

		rec := do(t, s.Handler(), http.MethodGet, "/", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp struct {
			Name   string   `json:"name"`
			Routes []string `json:"routes"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if resp.Name != "krishimitra-test" {
			t.Errorf("expected name krishimitra-test, got %s", resp.Name)
		}
		if len(resp.Routes) != 1 || resp.Routes[0] != "POST /krishimitra" {
			t.Errorf("unexpected routes %v", resp.Routes)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	t.Run("requires key", func(t *testing.T) {
		rec := do(t, s.Handler(), http.MethodGet, "/health", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("ok with key", func(t *testing.T) {
		rec := do(t, s.Handler(), http.MethodGet, "/health", testKey)
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != "OK" {
			t.Errorf("expected body OK, got %q", rec.Body.String())
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
			t.Errorf("expected text/plain, got %s", rec.Header().Get("Content-Type"))
		}
	})

	t.Run("ok with query key", func(t *testing.T) {
		rec := do(t, s.Handler(), http.MethodGet, "/health?api_key="+testKey, "")
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})
}

func TestReadyEndpoint(t *testing.T) {
	var checkErr error
	s := newTestServer(t, WithReadinessCheck("redis", func(context.Context) error { return checkErr }))

	tests := []struct {
		name           string
		ready          bool
		checkErr       error
		expectedStatus int
	}{
		{name: "ready state", ready: true, expectedStatus: http.StatusOK},
		{name: "not ready state", ready: false, expectedStatus: http.StatusServiceUnavailable},
		{name: "failing check", ready: true, checkErr: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.setReady(tt.ready)
			checkErr = tt.checkErr

			rec := do(t, s.Handler(), http.MethodGet, "/ready", testKey)
			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}

			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if tt.checkErr != nil && resp.Checks["redis"] != tt.checkErr.Error() {
				t.Errorf("expected redis check error, got %v", resp.Checks)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	do(t, s.Handler(), http.MethodPost, "/krishimitra", testKey)

	rec := do(t, s.Handler(), http.MethodGet, "/metrics", testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `krishimitra_http_requests_total{method="POST",path="/krishimitra",status="200"}`) {
		t.Error("expected request counter labelled with route pattern")
	}

	if rec := do(t, s.Handler(), http.MethodGet, "/metrics", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected metrics to require key, got %d", rec.Code)
	}
}

func TestRouting(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		target     string
		key        string
		wantStatus int
	}{
		{name: "route", method: http.MethodPost, target: "/krishimitra", key: testKey, wantStatus: http.StatusOK},
		{name: "route without key", method: http.MethodPost, target: "/krishimitra", wantStatus: http.StatusUnauthorized},
		{name: "wrong method with key", method: http.MethodGet, target: "/krishimitra", key: testKey, wantStatus: http.StatusMethodNotAllowed},
		{name: "wrong method without key", method: http.MethodGet, target: "/krishimitra", wantStatus: http.StatusUnauthorized},
		{name: "unknown path with key", method: http.MethodGet, target: "/nope", key: testKey, wantStatus: http.StatusNotFound},
		{name: "unknown path without key", method: http.MethodGet, target: "/nope", wantStatus: http.StatusUnauthorized},
		{name: "root post not allowed", method: http.MethodPost, target: "/", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), tt.method, tt.target, tt.key)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if rec.Header().Get(HeaderRequestID) == "" {
				t.Error("expected X-Request-Id on every response")
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	s := newTestServer(t)

	preflight := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/krishimitra", nil)
		req.Header.Set("Origin", "https://farmer.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		if key != "" {
			req.Header.Set(HeaderAPIKey, key)
		}
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec
	}

	if rec := preflight(""); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected preflight without key to be 401, got %d", rec.Code)
	}

	rec := preflight(testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected preflight with key to be 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "OPTIONS, POST" {
		t.Errorf("expected Allow %q, got %q", "OPTIONS, POST", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected Access-Control-Allow-Origin *, got %q", got)
	}
}

func TestRateLimiting(t *testing.T) {
	cfg := NewConfig()
	cfg.RateLimit = 1      // 1 req/sec
	cfg.RateLimitBurst = 1 // burst of 1

	s := New(WithConfig(cfg), WithAPIKey(testKey), WithRoutes(Route{
		Method:      http.MethodPost,
		Pattern:     "/krishimitra",
		RateLimited: true,
		Handler:     okHandler(nil),
	}))

	if rec := do(t, s.Handler(), http.MethodPost, "/krishimitra", testKey); rec.Code != http.StatusOK {
		t.Errorf("first request: expected status 200, got %d", rec.Code)
	}

	rec := do(t, s.Handler(), http.MethodPost, "/krishimitra", testKey)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request: expected status 429, got %d", rec.Code)
	}

	// Unlimited routes are unaffected.
	if rec := do(t, s.Handler(), http.MethodGet, "/health", testKey); rec.Code != http.StatusOK {
		t.Errorf("health: expected status 200, got %d", rec.Code)
	}
}

func TestServeAndShutdown(t *testing.T) {
	cfg := NewConfig()
	cfg.ShutdownTimeout = 5 * time.Second
	s := New(WithConfig(cfg), WithAPIKey(testKey))

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()

	url := "http://" + l.Addr().String()
	var resp *http.Response
	for i := 0; i < 50; i++ {
		req, _ := http.NewRequest(http.MethodGet, url+"/ready", nil)
		req.Header.Set(HeaderAPIKey, testKey)
		resp, err = http.DefaultClient.Do(req)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server did not start: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected ready 200, got %d", resp.StatusCode)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
