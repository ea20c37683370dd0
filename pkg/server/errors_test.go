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
	"net/http"
	"net/http/httptest"
	"testing"

	cnserrors "github.com/krishimitra/krishimitra-api/pkg/errors"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		name string
		code cnserrors.ErrorCode
		want int
	}{
		{"invalid request", cnserrors.ErrCodeInvalidRequest, http.StatusBadRequest},
		{"unauthorized", cnserrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{"not found", cnserrors.ErrCodeNotFound, http.StatusNotFound},
		{"method not allowed", cnserrors.ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{"rate limit", cnserrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{"unavailable", cnserrors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"timeout", cnserrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{"upstream", cnserrors.ErrCodeUpstream, http.StatusBadGateway},
		{"internal", cnserrors.ErrCodeInternal, http.StatusInternalServerError},
		{"unknown defaults to internal", cnserrors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromCode(tt.code); got != tt.want {
				t.Fatalf("HTTPStatusFromCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestWriteError_WritesErrorResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "req-123"))
	w := httptest.NewRecorder()

	WriteError(w, req, http.StatusBadRequest, cnserrors.ErrCodeInvalidRequest, "bad request")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if got := w.Header().Get("X-Error-Code"); got != string(cnserrors.ErrCodeInvalidRequest) {
		t.Fatalf("expected X-Error-Code %q, got %q", cnserrors.ErrCodeInvalidRequest, got)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp) != 1 || resp["error"] != "bad request" {
		t.Fatalf("expected only error=bad request, got %#v", resp)
	}
}

func TestWriteError_UnauthorizedBodyIsVerbatim(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	WriteError(w, req, http.StatusUnauthorized, cnserrors.ErrCodeUnauthorized, UnauthorizedMessage)

	want := `{"error":"Unauthorized — invalid or missing API key."}` + "\n"
	if w.Body.String() != want {
		t.Fatalf("expected body %q, got %q", want, w.Body.String())
	}
}

func TestWriteErrorFromErr_StructuredErrorMapsStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	cause := errors.New("redis is down")
	err := cnserrors.WrapWithContext(cnserrors.ErrCodeUnavailable, "stats unavailable", cause, map[string]any{"component": "redis"})

	WriteErrorFromErr(w, req, err, "fallback")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp ErrorResponse
	if uerr := json.Unmarshal(w.Body.Bytes(), &resp); uerr != nil {
		t.Fatalf("failed to unmarshal response: %v", uerr)
	}
	if resp.Error != "stats unavailable" {
		t.Fatalf("expected message %q, got %q", "stats unavailable", resp.Error)
	}
}

func TestWriteErrorFromErr_NonStructuredFallsBackToInternal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	WriteErrorFromErr(w, req, errors.New("boom"), "fallback")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != "fallback" {
		t.Fatalf("expected fallback message, got %q", resp.Error)
	}
	if w.Header().Get("X-Error-Code") != string(cnserrors.ErrCodeInternal) {
		t.Fatalf("expected INTERNAL error code header")
	}
}
