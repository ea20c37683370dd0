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

// Package dispatch implements the unified /krishimitra endpoint.
//
// A request is classified into exactly one category by an ordered rule list
// where the first match wins:
//
//  1. a multipart file field named "file"       disease_chain
//  2. a "query" key                              qna_chain
//  3. "city", "crop" and "soil_type" keys        irrigation_chain
//  4. "crop" and "location" keys                 soil_chain
//  5. "location" and "season" keys               crop_chain
//
// Rules test key presence only; empty values still match. Requests that
// match no rule get HTTP 200 with an error body. Any failure while parsing
// the request or running a chain is returned as HTTP 500 with the error text.
//
// Non-file payloads come from a JSON object body when the request is JSON,
// otherwise from form fields. Values are flattened to strings: strings are
// kept verbatim, null becomes "", and any other value becomes its compact
// JSON text.
//
// Uploaded images are written to a uniquely named ".jpg" file that exists
// only for the duration of the disease chain call and is removed on every
// exit path, including chain errors and panics.
package dispatch
