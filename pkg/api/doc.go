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

// Package api wires the KrishiMitra dispatcher into the reusable pkg/server.
//
// It builds the configured chain backend (remote chain service or Gemini),
// the dispatch stats recorder (Redis when configured, in-memory otherwise)
// and the dispatch handler, then registers them as routes.
//
// # Endpoints
//
// Public:
//   - GET /            - Service descriptor
//
// Behind the API key (x-api-key header or api_key query parameter):
//   - POST /krishimitra - Unified dispatch endpoint (rate limited)
//   - GET /stats        - Dispatch counts per module
//   - GET /health       - Liveness probe ("OK")
//   - GET /ready        - Readiness probe, including the stats store
//   - GET /metrics      - Prometheus metrics
//
// # Configuration
//
// See pkg/config for the YAML file layout and environment variables.
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/krishimitra/krishimitra-api/pkg/api.version=1.0.0'"
package api
