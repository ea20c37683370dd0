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

// Package serializer provides utilities for serializing data to and from the
// formats used by the KrishiMitra API and its CLI.
//
// The package supports two formats:
//   - JSON: Machine-readable structured data, used on the wire
//   - YAML: Human-readable payload and configuration files for the CLI
//
// Usage:
//
//	writer := serializer.NewWriter(serializer.FormatJSON, os.Stdout)
//	if err := writer.Serialize(ctx, data); err != nil {
//		log.Fatal(err)
//	}
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, data)
//	serializer.RespondText(w, http.StatusOK, "OK")
//
// For outbound calls to remote analysis chains:
//
//	client := serializer.NewHTTPClient(serializer.WithTotalTimeout(time.Minute))
//
// The package automatically handles:
//   - Proper content-type headers for HTTP responses
//   - Buffering to prevent partial responses on encoding errors
//   - Connection pooling and TLS defaults for outbound clients
package serializer
