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
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/krishimitra/krishimitra-api/pkg/defaults"
)

// Route is a caller supplied endpoint.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler

	// RateLimited applies the server's token bucket to this route.
	RateLimited bool
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	// Server identity
	Name    string
	Version string

	// APIKey is required on every path except "/".
	APIKey string

	// Descriptor is served at "/". Nil serves a generated route listing.
	Descriptor any

	// Routes to be added to the server
	Routes []Route

	// ReadinessChecks run on every /ready request.
	ReadinessChecks []ReadinessCheck

	// Server configuration
	Address string
	Port    int

	// AllowedOrigins for CORS; "*" allows any origin.
	AllowedOrigins []string

	// Rate limiting configuration
	RateLimit      rate.Limit // requests per second
	RateLimitBurst int        // burst size

	// Timeouts
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// NewConfig returns a new Config with sensible defaults.
// Use this when you want to customize config programmatically.
func NewConfig() *Config {
	return parseConfig()
}

// parseConfig returns sensible defaults
func parseConfig() *Config {
	cfg := &Config{
		Name:              "krishimitra-api",
		Version:           "undefined",
		Address:           "0.0.0.0",
		Port:              defaults.ServerPort,
		AllowedOrigins:    []string{"*"},
		RateLimit:         defaults.RateLimit,
		RateLimitBurst:    defaults.RateLimitBurst,
		ReadTimeout:       defaults.ServerReadTimeout,
		ReadHeaderTimeout: defaults.ServerReadHeaderTimeout,
		WriteTimeout:      defaults.ServerWriteTimeout,
		IdleTimeout:       defaults.ServerIdleTimeout,
		ShutdownTimeout:   defaults.ServerShutdownTimeout,
	}

	// Override with environment variables if set
	if portStr := os.Getenv("PORT"); portStr != "" {
		var port int
		if _, err := fmt.Sscanf(portStr, "%d", &port); err == nil {
			cfg.Port = port
		}
	}

	// Allow customization of shutdown timeout to match the platform's grace period
	if shutdownStr := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); shutdownStr != "" {
		var seconds int
		if _, err := fmt.Sscanf(shutdownStr, "%d", &seconds); err == nil && seconds > 0 {
			cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
		}
	}

	return cfg
}

// Option is a functional option for configuring Server instances.
type Option func(*Server)

// WithName sets the server name.
func WithName(name string) Option {
	return func(s *Server) {
		s.config.Name = name
	}
}

// WithVersion sets the server version.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.config.Version = version
	}
}

// WithAPIKey sets the key required by the gate.
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.config.APIKey = key
	}
}

// WithDescriptor sets the body served at "/".
func WithDescriptor(d any) Option {
	return func(s *Server) {
		s.config.Descriptor = d
	}
}

// WithRoutes adds routes.
func WithRoutes(routes ...Route) Option {
	return func(s *Server) {
		s.config.Routes = append(s.config.Routes, routes...)
	}
}

// WithReadinessCheck adds a check run by /ready.
func WithReadinessCheck(name string, check func(ctx context.Context) error) Option {
	return func(s *Server) {
		s.config.ReadinessChecks = append(s.config.ReadinessChecks, ReadinessCheck{Name: name, Check: check})
	}
}

// WithConfig replaces the server configuration. Apply it before other options.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}
