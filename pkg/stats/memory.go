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
	"sync"
)

// Memory is an in-process Recorder. Counters never expire.
type Memory struct {
	mu       sync.Mutex
	byModule map[string]Counters
}

var _ Recorder = (*Memory)(nil)

// NewMemory returns an empty Memory recorder.
func NewMemory() *Memory {
	return &Memory{byModule: make(map[string]Counters)}
}

// Record implements Recorder.
func (m *Memory) Record(_ context.Context, ev Event) error {
	if !ev.Outcome.valid() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.byModule[ev.Module]
	c.add(ev.Outcome, 1)
	m.byModule[ev.Module] = c
	return nil
}

// Snapshot implements Recorder. The returned map is a copy.
func (m *Memory) Snapshot(_ context.Context) (map[string]Counters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Counters, len(m.byModule))
	for k, v := range m.byModule {
		out[k] = v
	}
	return out, nil
}
