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

// Package gemini implements the analysis chains as prompts against the
// Google Gemini API.
//
// One genai client is shared by all five chains. Each chain has its own
// system instruction; structured chains ask for a JSON response and return
// the decoded value, while the Q&A chain returns plain text. Transport
// failures are retried with a linear backoff before giving up.
package gemini
