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

package defaults

import "time"

const (
	// ServerPort is the listen port used when PORT is not set.
	ServerPort = 10000

	// ServerReadTimeout is the maximum duration for reading the full request,
	// including multipart image uploads.
	ServerReadTimeout = 30 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	// Chains backed by language models routinely take tens of seconds.
	ServerWriteTimeout = 180 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

const (
	// ChainCallTimeout bounds a single outbound call made by a chain backend.
	ChainCallTimeout = 150 * time.Second

	// ChainMaxAttempts is the number of attempts the Gemini backend makes on
	// transport failures before giving up.
	ChainMaxAttempts = 3

	// ChainRetryBackoff is the base backoff between Gemini attempts; attempt n
	// waits n times this value.
	ChainRetryBackoff = 300 * time.Millisecond
)

const (
	// HTTPClientTimeout is the default total timeout for remote chain requests.
	HTTPClientTimeout = ChainCallTimeout

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	// Remote chains only answer once the analysis is done.
	HTTPResponseHeaderTimeout = ChainCallTimeout

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPExpectContinueTimeout is the timeout for Expect: 100-continue.
	HTTPExpectContinueTimeout = 1 * time.Second
)

const (
	// MaxBodyBytes caps the size of a /krishimitra request body.
	MaxBodyBytes int64 = 16 << 20

	// MultipartMemoryBytes is the part of a multipart body kept in memory;
	// the rest spills to temporary files managed by net/http.
	MultipartMemoryBytes int64 = 8 << 20

	// RateLimit is the default sustained request rate for /krishimitra.
	RateLimit = 20

	// RateLimitBurst is the default burst size for /krishimitra.
	RateLimitBurst = 40
)

const (
	// StatsRecordTimeout bounds a best-effort stats write.
	StatsRecordTimeout = 2 * time.Second

	// StatsBucketTTL is how long per-minute stats buckets are retained.
	StatsBucketTTL = 24 * time.Hour

	// StatsPingTimeout bounds the startup connectivity check of the stats store.
	StatsPingTimeout = 2 * time.Second
)
