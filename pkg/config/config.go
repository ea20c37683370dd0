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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/krishimitra/krishimitra-api/pkg/defaults"
)

// Chain backends.
const (
	BackendRemote = "remote"
	BackendGemini = "gemini"
)

const (
	DefaultAddress     = "0.0.0.0"
	DefaultRemoteURL   = "http://127.0.0.1:8001"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultStatsPrefix = "krishimitra:stats"
)

// Config holds the full service configuration.
type Config struct {
	// APIKey is the shared secret required on every path except "/".
	APIKey string

	Address         string
	Port            int
	LogLevel        string
	MaxBodyBytes    int64
	TempDir         string
	RateLimit       float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	Chains ChainConfig
	Stats  StatsConfig
}

// ChainConfig selects and configures the analysis chain backend.
type ChainConfig struct {
	Backend string

	RemoteURL     string
	RemoteTimeout time.Duration

	GeminiAPIKey string
	GeminiModel  string
}

// StatsConfig configures dispatch stats. An empty RedisAddr keeps stats in memory.
type StatsConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
}

type configFile struct {
	Server struct {
		Address                string   `yaml:"address"`
		Port                   int      `yaml:"port"`
		MaxBodyBytes           int64    `yaml:"max_body_bytes"`
		TempDir                string   `yaml:"temp_dir"`
		RateLimit              float64  `yaml:"rate_limit"`
		RateLimitBurst         int      `yaml:"rate_limit_burst"`
		ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
		AllowedOrigins         []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Auth struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"auth"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Chains struct {
		Backend string `yaml:"backend"`
		Remote  struct {
			URL            string `yaml:"url"`
			TimeoutSeconds int    `yaml:"timeout_seconds"`
		} `yaml:"remote"`
		Gemini struct {
			APIKey string `yaml:"api_key"`
			Model  string `yaml:"model"`
		} `yaml:"gemini"`
	} `yaml:"chains"`
	Stats struct {
		Prefix string `yaml:"prefix"`
		Redis  struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"stats"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Address:         DefaultAddress,
		Port:            defaults.ServerPort,
		LogLevel:        "info",
		MaxBodyBytes:    defaults.MaxBodyBytes,
		RateLimit:       defaults.RateLimit,
		RateLimitBurst:  defaults.RateLimitBurst,
		ShutdownTimeout: defaults.ServerShutdownTimeout,
		AllowedOrigins:  []string{"*"},
		Chains: ChainConfig{
			Backend:       BackendRemote,
			RemoteURL:     DefaultRemoteURL,
			RemoteTimeout: defaults.ChainCallTimeout,
			GeminiModel:   DefaultGeminiModel,
		},
		Stats: StatsConfig{
			Prefix: DefaultStatsPrefix,
		},
	}
}

// LoadDotEnv reads KEY=VALUE pairs from the given files (".env" when none are
// given) into the process environment. Missing files are ignored and existing
// variables are not overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults, the optional YAML file at path,
// and the environment. An explicit path that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		var f configFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		cfg.applyFile(&f)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(f *configFile) {
	if f.Server.Address != "" {
		c.Address = f.Server.Address
	}
	if f.Server.Port > 0 {
		c.Port = f.Server.Port
	}
	if f.Server.MaxBodyBytes > 0 {
		c.MaxBodyBytes = f.Server.MaxBodyBytes
	}
	if f.Server.TempDir != "" {
		c.TempDir = f.Server.TempDir
	}
	if f.Server.RateLimit > 0 {
		c.RateLimit = f.Server.RateLimit
	}
	if f.Server.RateLimitBurst > 0 {
		c.RateLimitBurst = f.Server.RateLimitBurst
	}
	if f.Server.ShutdownTimeoutSeconds > 0 {
		c.ShutdownTimeout = time.Duration(f.Server.ShutdownTimeoutSeconds) * time.Second
	}
	if len(f.Server.AllowedOrigins) > 0 {
		c.AllowedOrigins = f.Server.AllowedOrigins
	}
	if f.Auth.APIKey != "" {
		c.APIKey = f.Auth.APIKey
	}
	if f.Logging.Level != "" {
		c.LogLevel = f.Logging.Level
	}
	if f.Chains.Backend != "" {
		c.Chains.Backend = f.Chains.Backend
	}
	if f.Chains.Remote.URL != "" {
		c.Chains.RemoteURL = f.Chains.Remote.URL
	}
	if f.Chains.Remote.TimeoutSeconds > 0 {
		c.Chains.RemoteTimeout = time.Duration(f.Chains.Remote.TimeoutSeconds) * time.Second
	}
	if f.Chains.Gemini.APIKey != "" {
		c.Chains.GeminiAPIKey = f.Chains.Gemini.APIKey
	}
	if f.Chains.Gemini.Model != "" {
		c.Chains.GeminiModel = f.Chains.Gemini.Model
	}
	if f.Stats.Prefix != "" {
		c.Stats.Prefix = f.Stats.Prefix
	}
	if f.Stats.Redis.Addr != "" {
		c.Stats.RedisAddr = f.Stats.Redis.Addr
	}
	if f.Stats.Redis.Password != "" {
		c.Stats.RedisPassword = f.Stats.Redis.Password
	}
	if f.Stats.Redis.DB > 0 {
		c.Stats.RedisDB = f.Stats.Redis.DB
	}
}

func (c *Config) applyEnv() {
	c.APIKey = envOrDefault("KRISHIMITRA_API_KEY", c.APIKey)
	c.Port = envInt("PORT", c.Port)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
	c.MaxBodyBytes = envInt64("KRISHIMITRA_MAX_BODY_BYTES", c.MaxBodyBytes)
	c.TempDir = envOrDefault("KRISHIMITRA_TEMP_DIR", c.TempDir)
	if seconds := envInt("SHUTDOWN_TIMEOUT_SECONDS", 0); seconds > 0 {
		c.ShutdownTimeout = time.Duration(seconds) * time.Second
	}

	c.Chains.Backend = strings.ToLower(envOrDefault("KRISHIMITRA_CHAIN_BACKEND", c.Chains.Backend))
	c.Chains.RemoteURL = envOrDefault("KRISHIMITRA_CHAIN_URL", c.Chains.RemoteURL)
	c.Chains.GeminiAPIKey = envOrDefault("GEMINI_API_KEY", c.Chains.GeminiAPIKey)
	c.Chains.GeminiModel = envOrDefault("GEMINI_MODEL", c.Chains.GeminiModel)

	c.Stats.RedisAddr = envOrDefault("KRISHIMITRA_STATS_REDIS_ADDR", c.Stats.RedisAddr)
	c.Stats.RedisPassword = envOrDefault("KRISHIMITRA_STATS_REDIS_PASSWORD", c.Stats.RedisPassword)
	c.Stats.RedisDB = envInt("KRISHIMITRA_STATS_REDIS_DB", c.Stats.RedisDB)
}

// Validate reports configuration that would leave the service unusable.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, errors.New("api key is required (set KRISHIMITRA_API_KEY)"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Port))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("invalid max body bytes: %d", c.MaxBodyBytes))
	}
	switch c.Chains.Backend {
	case BackendRemote:
		if strings.TrimSpace(c.Chains.RemoteURL) == "" {
			errs = append(errs, errors.New("remote chain backend requires a url (set KRISHIMITRA_CHAIN_URL)"))
		}
	case BackendGemini:
		if strings.TrimSpace(c.Chains.GeminiAPIKey) == "" {
			errs = append(errs, errors.New("gemini chain backend requires GEMINI_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown chain backend: %q (supported: %s, %s)",
			c.Chains.Backend, BackendRemote, BackendGemini))
	}
	return errors.Join(errs...)
}

func envOrDefault(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envInt64(name string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}
