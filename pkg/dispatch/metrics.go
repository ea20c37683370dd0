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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishimitra_dispatch_total",
			Help: "Total number of /krishimitra requests by module and outcome",
		},
		[]string{"module", "outcome"},
	)

	chainDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krishimitra_chain_duration_seconds",
			Help:    "Duration of analysis chain calls in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"module"},
	)

	chainPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krishimitra_chain_panics_total",
			Help: "Total number of panics recovered from analysis chains",
		},
	)

	tempImagesInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "krishimitra_temp_images_in_use",
			Help: "Current number of uploaded leaf images held on disk",
		},
	)

	tempImageRemoveErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krishimitra_temp_image_remove_errors_total",
			Help: "Total number of uploaded leaf images that could not be removed",
		},
	)

	statsRecordErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krishimitra_stats_record_errors_total",
			Help: "Total number of dispatch stats events that failed to record",
		},
	)
)
