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

// Package server provides the HTTP server shared by the KrishiMitra API.
//
// It owns everything around the domain handlers: routing, authentication,
// observability and lifecycle. Domain routes are supplied by the caller.
//
// # Architecture
//
// Every request passes through the same middleware chain, in order:
//
//   - CORS headers for any origin (preflights still pass through the gate)
//   - Request ID tracking (X-Request-Id, UUID)
//   - Prometheus RED metrics labelled by route pattern
//   - Panic recovery
//   - API key gate on every path except "/"
//   - Debug request logging
//
// Routes registered with RateLimited set are additionally guarded by a
// token bucket (golang.org/x/time/rate).
//
// # Authentication
//
// The key is read from the x-api-key header, falling back to the api_key
// query parameter when the header is absent or empty, and compared with the
// configured key. A mismatch returns 401 with
//
//	{"error": "Unauthorized — invalid or missing API key."}
//
// The gate runs before routing, so unknown paths also answer 401 without a key.
//
// # Built-in Endpoints
//
//	GET /          public service descriptor (JSON)
//	GET /health    liveness, plain text "OK"
//	GET /ready     readiness, JSON; 503 while starting, stopping or when a check fails
//	GET /metrics   Prometheus exposition
//
// # Usage
//
//	s := server.New(
//	    server.WithName("krishimitra-api"),
//	    server.WithVersion(version),
//	    server.WithAPIKey(cfg.APIKey),
//	    server.WithRoutes(server.Route{
//	        Method:      http.MethodPost,
//	        Pattern:     "/krishimitra",
//	        Handler:     handler,
//	        RateLimited: true,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// Run blocks until ctx is canceled or SIGINT/SIGTERM is received, then
// drains in-flight requests for up to ShutdownTimeout.
package server
