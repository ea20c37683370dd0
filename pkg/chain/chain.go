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

package chain

import (
	"context"
	"errors"
)

// Fields is the flat string mapping built from a JSON or form payload.
type Fields map[string]string

// LeafAnalyzer detects crop disease from a leaf image stored at imagePath.
type LeafAnalyzer interface {
	AnalyzeLeaf(ctx context.Context, imagePath string) (any, error)
}

// Answerer answers a free-text farming question.
type Answerer interface {
	Answer(ctx context.Context, query string) (any, error)
}

// IrrigationAnalyzer plans irrigation from city, crop and soil_type (plus any extra fields).
type IrrigationAnalyzer interface {
	AnalyzeIrrigation(ctx context.Context, fields Fields) (any, error)
}

// SoilAnalyzer analyzes soil suitability from crop and location.
type SoilAnalyzer interface {
	AnalyzeSoil(ctx context.Context, fields Fields) (any, error)
}

// CropRecommender recommends crops from location and season.
type CropRecommender interface {
	RecommendCrop(ctx context.Context, fields Fields) (any, error)
}

// Backend implements all five collaborators.
type Backend interface {
	LeafAnalyzer
	Answerer
	IrrigationAnalyzer
	SoilAnalyzer
	CropRecommender
}

// Set bundles the collaborators used by the dispatcher.
type Set struct {
	Leaf       LeafAnalyzer
	QnA        Answerer
	Irrigation IrrigationAnalyzer
	Soil       SoilAnalyzer
	Crop       CropRecommender
}

// FromBackend returns a Set where every collaborator is served by b.
func FromBackend(b Backend) Set {
	return Set{Leaf: b, QnA: b, Irrigation: b, Soil: b, Crop: b}
}

// Validate returns an error naming every collaborator that is not set.
func (s Set) Validate() error {
	var errs []error
	if s.Leaf == nil {
		errs = append(errs, errors.New("leaf analyzer is not configured"))
	}
	if s.QnA == nil {
		errs = append(errs, errors.New("answerer is not configured"))
	}
	if s.Irrigation == nil {
		errs = append(errs, errors.New("irrigation analyzer is not configured"))
	}
	if s.Soil == nil {
		errs = append(errs, errors.New("soil analyzer is not configured"))
	}
	if s.Crop == nil {
		errs = append(errs, errors.New("crop recommender is not configured"))
	}
	return errors.Join(errs...)
}

// LeafFunc adapts a function to LeafAnalyzer.
type LeafFunc func(ctx context.Context, imagePath string) (any, error)

func (f LeafFunc) AnalyzeLeaf(ctx context.Context, imagePath string) (any, error) {
	return f(ctx, imagePath)
}

// AnswerFunc adapts a function to Answerer.
type AnswerFunc func(ctx context.Context, query string) (any, error)

func (f AnswerFunc) Answer(ctx context.Context, query string) (any, error) {
	return f(ctx, query)
}

// IrrigationFunc adapts a function to IrrigationAnalyzer.
type IrrigationFunc func(ctx context.Context, fields Fields) (any, error)

func (f IrrigationFunc) AnalyzeIrrigation(ctx context.Context, fields Fields) (any, error) {
	return f(ctx, fields)
}

// SoilFunc adapts a function to SoilAnalyzer.
type SoilFunc func(ctx context.Context, fields Fields) (any, error)

func (f SoilFunc) AnalyzeSoil(ctx context.Context, fields Fields) (any, error) {
	return f(ctx, fields)
}

// CropFunc adapts a function to CropRecommender.
type CropFunc func(ctx context.Context, fields Fields) (any, error)

func (f CropFunc) RecommendCrop(ctx context.Context, fields Fields) (any, error) {
	return f(ctx, fields)
}
