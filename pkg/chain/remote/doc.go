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

// Package remote implements the analysis chains by calling an external chain
// service over HTTP.
//
// The service is addressed by a base URL and exposes one POST endpoint per chain:
//
//	POST {base}/disease      multipart/form-data, image in field "file"
//	POST {base}/qna          {"query": "..."}
//	POST {base}/irrigation   {"city": "...", "crop": "...", "soil_type": "...", ...}
//	POST {base}/soil         {"crop": "...", "location": "...", ...}
//	POST {base}/crop         {"location": "...", "season": "...", ...}
//
// A 2xx JSON body is returned as the chain result. Any other status becomes an
// UPSTREAM structured error carrying the service's "error" field when present.
package remote
