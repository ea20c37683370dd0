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

package stats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/krishimitra/krishimitra-api/pkg/defaults"
)

const defaultPrefix = "krishimitra:stats"

// Redis is a Recorder backed by Redis hashes.
type Redis struct {
	rdb *redis.Client

	prefix string
	// ttl applies to per-minute buckets only; totals are cumulative.
	ttl time.Duration
}

var (
	_ Recorder = (*Redis)(nil)
	_ Pinger   = (*Redis)(nil)
)

// RedisOption configures a Redis recorder.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if p := strings.Trim(strings.TrimSpace(prefix), ":"); p != "" {
			r.prefix = p
		}
	}
}

// WithBucketTTL sets the expiry of per-minute buckets. Zero keeps them forever.
func WithBucketTTL(d time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = d }
}

// NewRedis returns a recorder using rdb.
func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		rdb:    rdb,
		prefix: defaultPrefix,
		ttl:    defaults.StatsBucketTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record implements Recorder.
func (r *Redis) Record(ctx context.Context, ev Event) error {
	if r == nil || r.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := fieldName(ev.Module, ev.Outcome)

	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.totalKey(), field, 1)

	bucketKey := r.bucketKey(at)
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, bucketKey, r.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Snapshot implements Recorder using the cumulative totals hash.
func (r *Redis) Snapshot(ctx context.Context) (map[string]Counters, error) {
	if r == nil || r.rdb == nil {
		return map[string]Counters{}, nil
	}
	raw, err := r.rdb.HGetAll(ctx, r.totalKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("read stats totals: %w", err)
	}
	return parseTotals(raw), nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

func (r *Redis) totalKey() string {
	return r.prefix + ":total"
}

func (r *Redis) bucketKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", r.prefix, at.UTC().Format("200601021504"))
}

func fieldName(module string, o Outcome) string {
	module = strings.TrimSpace(module)
	if module == "" {
		module = "unknown"
	}
	return module + ":" + string(o)
}

// parseTotals folds "<module>:<outcome>" hash fields into per-module counters.
// Unparseable fields and values are skipped.
func parseTotals(raw map[string]string) map[string]Counters {
	out := make(map[string]Counters)
	for field, value := range raw {
		i := strings.LastIndex(field, ":")
		if i <= 0 || i == len(field)-1 {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		module, outcome := field[:i], Outcome(field[i+1:])
		if !outcome.valid() {
			continue
		}
		c := out[module]
		c.add(outcome, n)
		out[module] = c
	}
	return out
}
