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

// Package chain defines the analysis collaborators the dispatcher invokes.
//
// Each collaborator is an opaque routine that takes structured input and
// returns a JSON-serializable value. The dispatcher depends only on the
// interfaces in this package; concrete backends live in sub-packages:
//
//   - remote: forwards each call to an external chain service over HTTP
//   - gemini: runs each chain as a prompt against the Gemini API
//
// Plain functions can satisfy any collaborator through the Func adapters,
// which is how tests wire fakes:
//
//	set := chain.Set{
//	    QnA: chain.AnswerFunc(func(ctx context.Context, q string) (any, error) {
//	        return "sow after the first rains", nil
//	    }),
//	}
package chain
