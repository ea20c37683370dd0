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

package dispatch

import (
	"github.com/krishimitra/krishimitra-api/pkg/chain"
)

// Category is the outcome of classifying a request payload.
type Category string

const (
	CategoryDisease    Category = "disease"
	CategoryQnA        Category = "qna"
	CategoryIrrigation Category = "irrigation"
	CategorySoil       Category = "soil"
	CategoryCrop       Category = "crop"
	CategoryInvalid    Category = "invalid"
)

// Module tags returned in success envelopes.
const (
	ModuleDisease    = "disease_chain"
	ModuleQnA        = "qna_chain"
	ModuleIrrigation = "irrigation_chain"
	ModuleSoil       = "soil_chain"
	ModuleCrop       = "crop_chain"
)

// Module returns the envelope tag for c, or "" for CategoryInvalid.
func (c Category) Module() string {
	switch c {
	case CategoryDisease:
		return ModuleDisease
	case CategoryQnA:
		return ModuleQnA
	case CategoryIrrigation:
		return ModuleIrrigation
	case CategorySoil:
		return ModuleSoil
	case CategoryCrop:
		return ModuleCrop
	default:
		return ""
	}
}

type rule struct {
	category Category
	keys     []string
}

// fieldRules are evaluated in order after the file rule.
var fieldRules = []rule{
	{category: CategoryQnA, keys: []string{"query"}},
	{category: CategoryIrrigation, keys: []string{"city", "crop", "soil_type"}},
	{category: CategorySoil, keys: []string{"crop", "location"}},
	{category: CategoryCrop, keys: []string{"location", "season"}},
}

// Classify returns the category for a payload. hasFile reports whether a
// multipart "file" field was uploaded.
func Classify(hasFile bool, fields chain.Fields) Category {
	if hasFile {
		return CategoryDisease
	}
	for _, r := range fieldRules {
		if hasAll(fields, r.keys) {
			return r.category
		}
	}
	return CategoryInvalid
}

func hasAll(fields chain.Fields, keys []string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return false
		}
	}
	return true
}
