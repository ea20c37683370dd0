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
	"time"
)

// Outcome is the result of a single dispatch.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeError   Outcome = "error"
	OutcomeInvalid Outcome = "invalid"
)

func (o Outcome) valid() bool {
	return o == OutcomeOK || o == OutcomeError || o == OutcomeInvalid
}

// Event is one dispatch decision.
type Event struct {
	Module  string
	Outcome Outcome
	At      time.Time
}

// Counters holds outcome totals for one module.
type Counters struct {
	OK      int64 `json:"ok" yaml:"ok"`
	Error   int64 `json:"error" yaml:"error"`
	Invalid int64 `json:"invalid" yaml:"invalid"`
}

func (c *Counters) add(o Outcome, n int64) {
	switch o {
	case OutcomeOK:
		c.OK += n
	case OutcomeError:
		c.Error += n
	case OutcomeInvalid:
		c.Invalid += n
	}
}

// Recorder stores dispatch events and reports totals keyed by module.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
	Snapshot(ctx context.Context) (map[string]Counters, error)
}

// Pinger is implemented by recorders backed by an external store.
type Pinger interface {
	Ping(ctx context.Context) error
}
