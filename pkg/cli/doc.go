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

// Package cli implements the krishimitrad command-line interface.
//
// # Commands
//
// serve - Run the API server (default command):
//
//	krishimitrad serve [--config FILE] [--port PORT] [--log-level LEVEL]
//
// Loads .env, the optional YAML config file and the environment, validates the
// result and serves until SIGINT/SIGTERM.
//
// classify - Show which chain a payload would be routed to:
//
//	krishimitrad classify --data payload.json [--with-file] [--format json|yaml]
//
// Reads a JSON or YAML object (use "-" for stdin) and runs it through the same
// classifier the server uses. --with-file simulates an uploaded image.
//
// version - Print build information.
//
// # Environment Variables
//
//	LOG_LEVEL           Logging verbosity (debug, info, warn, error)
//	KRISHIMITRA_CONFIG  Path to the YAML config file
//
// See pkg/config for the server settings read from the environment.
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/krishimitra/krishimitra-api/pkg/cli.version=1.0.0'"
package cli
