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
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/krishimitra/krishimitra-api/pkg/chain"
	"github.com/krishimitra/krishimitra-api/pkg/chain/gemini"
	"github.com/krishimitra/krishimitra-api/pkg/chain/remote"
	"github.com/krishimitra/krishimitra-api/pkg/config"
	"github.com/krishimitra/krishimitra-api/pkg/defaults"
	"github.com/krishimitra/krishimitra-api/pkg/dispatch"
	"github.com/krishimitra/krishimitra-api/pkg/errors"
	"github.com/krishimitra/krishimitra-api/pkg/serializer"
	"github.com/krishimitra/krishimitra-api/pkg/server"
	"github.com/krishimitra/krishimitra-api/pkg/stats"
)

const (
	name           = "krishimitra-api"
	versionDefault = "dev"

	// DispatchPath is the unified endpoint.
	DispatchPath = "/krishimitra"
	// StatsPath serves dispatch counts.
	StatsPath = "/stats"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/krishimitra/krishimitra-api/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Version returns the build version.
func Version() string { return version }

// Descriptor is the public body served at "/".
type Descriptor struct {
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
	Note      string   `json:"note"`
	Name      string   `json:"name"`
	Version   string   `json:"version"`
}

// NewDescriptor returns the root descriptor.
func NewDescriptor() Descriptor {
	return Descriptor{
		Message:   "🌾 KrishiMitra Unified API is running successfully!",
		Endpoints: []string{DispatchPath + " (POST)"},
		Note:      "Include your x-api-key header in every request.",
		Name:      name,
		Version:   version,
	}
}

// Serve builds the server from cfg and blocks until ctx is canceled or the
// process receives SIGINT/SIGTERM.
func Serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"backend", cfg.Chains.Backend,
	)

	s, cleanup, err := NewServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// NewServer assembles the server for cfg. The returned func releases the
// chain backend and stats store and must be called once the server stops.
func NewServer(ctx context.Context, cfg *config.Config) (*server.Server, func(), error) {
	if cfg == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidRequest, "config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid configuration", err)
	}

	backend, closeBackend, err := newBackend(ctx, cfg.Chains)
	if err != nil {
		return nil, nil, err
	}

	recorder, closeRecorder := newRecorder(cfg.Stats)

	cleanup := func() {
		if err := closeBackend(); err != nil {
			slog.Warn("failed to close chain backend", "error", err)
		}
		if err := closeRecorder(); err != nil {
			slog.Warn("failed to close stats store", "error", err)
		}
	}

	h, err := dispatch.NewHandler(chain.FromBackend(backend),
		dispatch.WithRecorder(recorder),
		dispatch.WithTempDir(cfg.TempDir),
		dispatch.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	sc := server.NewConfig()
	sc.Address = cfg.Address
	sc.Port = cfg.Port
	sc.RateLimit = rate.Limit(cfg.RateLimit)
	sc.RateLimitBurst = cfg.RateLimitBurst
	sc.ShutdownTimeout = cfg.ShutdownTimeout
	if len(cfg.AllowedOrigins) > 0 {
		sc.AllowedOrigins = cfg.AllowedOrigins
	}

	opts := []server.Option{
		server.WithConfig(sc),
		server.WithName(name),
		server.WithVersion(version),
		server.WithAPIKey(cfg.APIKey),
		server.WithDescriptor(NewDescriptor()),
		server.WithRoutes(
			server.Route{Method: http.MethodPost, Pattern: DispatchPath, Handler: h, RateLimited: true},
			server.Route{Method: http.MethodGet, Pattern: StatsPath, Handler: http.HandlerFunc(h.HandleStats)},
		),
	}

	if p, ok := recorder.(stats.Pinger); ok {
		pingStats(ctx, p)
		opts = append(opts, server.WithReadinessCheck("stats", p.Ping))
	}

	return server.New(opts...), cleanup, nil
}

func newBackend(ctx context.Context, cc config.ChainConfig) (chain.Backend, func() error, error) {
	noop := func() error { return nil }

	switch cc.Backend {
	case config.BackendRemote:
		var opts []remote.Option
		if cc.RemoteTimeout > 0 {
			opts = append(opts, remote.WithHTTPClient(
				serializer.NewHTTPClient(serializer.WithTotalTimeout(cc.RemoteTimeout))))
		}
		c, err := remote.New(cc.RemoteURL, opts...)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using remote chain backend", "url", cc.RemoteURL)
		return c, noop, nil
	case config.BackendGemini:
		c, err := gemini.New(ctx, cc.GeminiAPIKey, cc.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using gemini chain backend", "model", c.Model())
		return c, c.Close, nil
	default:
		return nil, nil, errors.New(errors.ErrCodeInvalidRequest, "unknown chain backend: "+cc.Backend)
	}
}

func newRecorder(sc config.StatsConfig) (stats.Recorder, func() error) {
	if sc.RedisAddr == "" {
		slog.Info("dispatch stats kept in memory")
		return stats.NewMemory(), func() error { return nil }
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     sc.RedisAddr,
		Password: sc.RedisPassword,
		DB:       sc.RedisDB,
	})
	r := stats.NewRedis(rdb, stats.WithPrefix(sc.Prefix))
	slog.Info("dispatch stats kept in redis", "addr", sc.RedisAddr, "db", sc.RedisDB)
	return r, r.Close
}

// pingStats logs whether the stats store is reachable. Stats are best
// effort, so an unreachable store does not stop startup.
func pingStats(ctx context.Context, p stats.Pinger) {
	ctx, cancel := context.WithTimeout(ctx, defaults.StatsPingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		slog.Warn("stats store unreachable, dispatch counts will be lost until it recovers", "error", err)
	}
}
