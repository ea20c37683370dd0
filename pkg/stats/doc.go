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

// Package stats counts dispatch outcomes per analysis module.
//
// Two recorders are provided: Memory for single-instance deployments and
// tests, and Redis for deployments where several replicas share counters.
// Recording is best effort; callers log failures and carry on.
//
// Redis layout (prefix defaults to "krishimitra:stats"):
//
//	<prefix>:total                      hash, field "<module>:<outcome>", never expires
//	<prefix>:minute:<YYYYMMDDhhmm>      hash, same fields, expires after the bucket TTL
package stats
