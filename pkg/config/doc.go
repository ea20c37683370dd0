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

// Package config loads the KrishiMitra API configuration.
//
// Values are resolved in three layers, each overriding the previous one:
//
//  1. Built-in defaults (port 10000, remote chain backend, in-memory stats)
//  2. An optional YAML file passed with --config
//  3. Environment variables
//
// A .env file in the working directory is read by LoadDotEnv before the
// environment layer is consulted; variables already present in the process
// environment win over the file.
//
// # Environment Variables
//
//	KRISHIMITRA_API_KEY              shared secret checked on every request except "/"
//	PORT                             listen port (default 10000)
//	LOG_LEVEL                        debug, info, warn, error
//	SHUTDOWN_TIMEOUT_SECONDS         graceful shutdown window
//	KRISHIMITRA_MAX_BODY_BYTES       request body cap for /krishimitra
//	KRISHIMITRA_TEMP_DIR             directory for uploaded leaf images
//	KRISHIMITRA_CHAIN_BACKEND        remote or gemini
//	KRISHIMITRA_CHAIN_URL            base URL of the remote chain service
//	GEMINI_API_KEY, GEMINI_MODEL     Gemini backend credentials and model
//	KRISHIMITRA_STATS_REDIS_ADDR     enables the Redis stats recorder
//	KRISHIMITRA_STATS_REDIS_PASSWORD
//	KRISHIMITRA_STATS_REDIS_DB
//
// The API key is loaded once at startup and passed explicitly to the server;
// nothing reads it from the environment per request.
package config
