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
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/krishimitra/krishimitra-api/pkg/errors"
	"github.com/krishimitra/krishimitra-api/pkg/serializer"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(
		s.corsMiddleware(),
		s.requestIDMiddleware,
		s.metricsMiddleware,
		s.panicRecoveryMiddleware,
		s.apiKeyMiddleware,
		s.loggingMiddleware,
	)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	allowed := map[string][]string{}
	add := func(method, pattern string, h http.Handler) {
		r.Method(method, pattern, h)
		allowed[pattern] = append(allowed[pattern], method)
	}

	// System endpoints (no rate limiting)
	add(http.MethodGet, "/", http.HandlerFunc(s.handleRoot))
	add(http.MethodGet, "/health", http.HandlerFunc(s.handleHealth))
	add(http.MethodGet, "/ready", http.HandlerFunc(s.handleReady))
	add(http.MethodGet, "/metrics", promhttp.Handler())

	for _, rt := range s.config.Routes {
		h := rt.Handler
		if rt.RateLimited {
			h = s.rateLimitMiddleware(h)
		}
		add(strings.ToUpper(rt.Method), rt.Pattern, h)
	}

	// Authenticated OPTIONS requests, preflights included, get the allowed methods.
	for pattern, methods := range allowed {
		r.Options(pattern, s.handleOptions(methods))
	}

	return r
}

func (s *Server) handleOptions(methods []string) http.HandlerFunc {
	set := map[string]bool{http.MethodOptions: true}
	for _, m := range methods {
		set[m] = true
		if m == http.MethodGet {
			set[http.MethodHead] = true
		}
	}
	list := make([]string, 0, len(set))
	for m := range set {
		list = append(list, m)
	}
	sort.Strings(list)
	allow := strings.Join(list, ", ")

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", allow)
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handling root route",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	if s.config.Descriptor != nil {
		serializer.RespondJSON(w, http.StatusOK, s.config.Descriptor)
		return
	}

	routes := make([]string, 0, len(s.config.Routes))
	for _, rt := range s.config.Routes {
		routes = append(routes, strings.ToUpper(rt.Method)+" "+rt.Pattern)
	}

	resp := struct {
		Name    string   `json:"name"`
		Version string   `json:"version"`
		Routes  []string `json:"routes"`
	}{
		Name:    s.config.Name,
		Version: s.config.Version,
		Routes:  routes,
	}
	serializer.RespondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusNotFound, errors.ErrCodeNotFound, "Not found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed, "Method not allowed")
}
