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

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/krishimitra/krishimitra-api/pkg/config"
	"github.com/krishimitra/krishimitra-api/pkg/server"
	"github.com/krishimitra/krishimitra-api/pkg/stats"
)

const testKey = "test-key"

// newChainService fakes the remote chain service.
func newChainService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /qna", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "Spray neem oil at dusk.")
	})
	mux.HandleFunc("POST /soil", func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]string
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			http.Error(w, `{"error":"bad body"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"ph_status": "acidic", "ph": fields["ph"]})
	})
	mux.HandleFunc("POST /crop", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":"model offline"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, chainURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.APIKey = testKey
	cfg.Chains.Backend = config.BackendRemote
	cfg.Chains.RemoteURL = chainURL
	cfg.TempDir = t.TempDir()
	return cfg
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, DispatchPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(server.HeaderAPIKey, testKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestConstants verifies package constants are properly defined
func TestConstants(t *testing.T) {
	if name != "krishimitra-api" {
		t.Errorf("name = %q, want %q", name, "krishimitra-api")
	}

	if versionDefault != "dev" {
		t.Errorf("versionDefault = %q, want %q", versionDefault, "dev")
	}

	if Version() == "" {
		t.Error("Version() should not be empty")
	}
}

func TestNewDescriptor(t *testing.T) {
	d := NewDescriptor()

	if len(d.Endpoints) != 1 || d.Endpoints[0] != "/krishimitra (POST)" {
		t.Errorf("unexpected endpoints %v", d.Endpoints)
	}
	if d.Note != "Include your x-api-key header in every request." {
		t.Errorf("unexpected note %q", d.Note)
	}
	if !strings.Contains(d.Message, "KrishiMitra") {
		t.Errorf("unexpected message %q", d.Message)
	}
}

func TestNewServer_InvalidConfig(t *testing.T) {
	if _, _, err := NewServer(context.Background(), nil); err == nil {
		t.Error("expected error for nil config")
	}

	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.APIKey = ""
	if _, _, err := NewServer(context.Background(), cfg); err == nil {
		t.Error("expected error for empty api key")
	}

	cfg = testConfig(t, "http://127.0.0.1:1")
	cfg.Chains.Backend = "carrier-pigeon"
	if _, _, err := NewServer(context.Background(), cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewServer_RemoteBackend(t *testing.T) {
	chains := newChainService(t)

	s, cleanup, err := NewServer(context.Background(), testConfig(t, chains.URL))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	defer cleanup()
	h := s.Handler()

	t.Run("root is public", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var d Descriptor
		if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
			t.Fatalf("decode descriptor: %v", err)
		}
		if d.Name != name {
			t.Errorf("expected name %q, got %q", name, d.Name)
		}
	})

	t.Run("dispatch requires key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, DispatchPath, strings.NewReader(`{"query":"x"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("qna", func(t *testing.T) {
		rec := post(t, h, `{"query":"How do I stop aphids?"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		want := `{"answer":"Spray neem oil at dusk.","module":"qna_chain"}`
		if got := strings.TrimSpace(rec.Body.String()); got != want {
			t.Errorf("body = %s, want %s", got, want)
		}
	})

	t.Run("soil", func(t *testing.T) {
		rec := post(t, h, `{"crop":"wheat","location":"Ludhiana","ph":5.4}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		want := `{"module":"soil_chain","result":{"ph":"5.4","ph_status":"acidic"}}`
		if got := strings.TrimSpace(rec.Body.String()); got != want {
			t.Errorf("body = %s, want %s", got, want)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		rec := post(t, h, `{"location":"Nashik","season":"kharif"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		var body server.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if !strings.Contains(body.Error, "model offline") {
			t.Errorf("expected upstream message, got %q", body.Error)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		rec := post(t, h, `{"hello":"world"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Invalid input") {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("stats", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, StatsPath, nil)
		req.Header.Set(server.HeaderAPIKey, testKey)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var resp struct {
			Modules map[string]stats.Counters `json:"modules"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode stats: %v", err)
		}
		if resp.Modules["qna_chain"].OK != 1 {
			t.Errorf("expected one qna success, got %+v", resp.Modules["qna_chain"])
		}
		if resp.Modules["soil_chain"].OK != 1 {
			t.Errorf("expected one soil success, got %+v", resp.Modules["soil_chain"])
		}
		if resp.Modules["crop_chain"].Error != 1 {
			t.Errorf("expected one crop error, got %+v", resp.Modules["crop_chain"])
		}
		if resp.Modules["unclassified"].Invalid != 1 {
			t.Errorf("expected one invalid request, got %+v", resp.Modules["unclassified"])
		}
	})
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cc      config.ChainConfig
		wantErr bool
	}{
		{name: "remote", cc: config.ChainConfig{Backend: config.BackendRemote, RemoteURL: "http://chains:8001"}},
		{name: "remote bad url", cc: config.ChainConfig{Backend: config.BackendRemote, RemoteURL: "chains"}, wantErr: true},
		{name: "gemini without key", cc: config.ChainConfig{Backend: config.BackendGemini, GeminiModel: "m"}, wantErr: true},
		{name: "unknown", cc: config.ChainConfig{Backend: "other"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, closeFn, err := newBackend(context.Background(), tt.cc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newBackend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if b == nil {
				t.Error("expected backend")
			}
			if err := closeFn(); err != nil {
				t.Errorf("close: %v", err)
			}
		})
	}
}

func TestNewRecorder(t *testing.T) {
	rec, closeFn := newRecorder(config.StatsConfig{})
	if _, ok := rec.(*stats.Memory); !ok {
		t.Errorf("expected memory recorder, got %T", rec)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}

	rec, closeFn = newRecorder(config.StatsConfig{RedisAddr: "127.0.0.1:6379", Prefix: "test"})
	if _, ok := rec.(*stats.Redis); !ok {
		t.Errorf("expected redis recorder, got %T", rec)
	}
	if _, ok := rec.(stats.Pinger); !ok {
		t.Error("expected redis recorder to be pingable")
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}
}
