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
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/krishimitra/krishimitra-api/pkg/chain"
	"github.com/krishimitra/krishimitra-api/pkg/defaults"
	"github.com/krishimitra/krishimitra-api/pkg/errors"
	"github.com/krishimitra/krishimitra-api/pkg/serializer"
	"github.com/krishimitra/krishimitra-api/pkg/server"
	"github.com/krishimitra/krishimitra-api/pkg/stats"
)

// InvalidInputMessage is returned with HTTP 200 when no rule matches.
const InvalidInputMessage = "Invalid input — please provide a valid image, query, or structured data."

// statsModuleUnclassified labels requests that never reached a chain.
const statsModuleUnclassified = "unclassified"

// ResultEnvelope is the success body for every chain except Q&A.
type ResultEnvelope struct {
	Module string `json:"module" yaml:"module"`
	Result any    `json:"result" yaml:"result"`
}

// AnswerEnvelope is the success body for the Q&A chain.
type AnswerEnvelope struct {
	Answer any    `json:"answer" yaml:"answer"`
	Module string `json:"module" yaml:"module"`
}

// StatsResponse is the body of the stats endpoint.
type StatsResponse struct {
	Modules map[string]stats.Counters `json:"modules" yaml:"modules"`
}

// Handler serves the unified endpoint.
type Handler struct {
	chains          chain.Set
	recorder        stats.Recorder
	tempDir         string
	maxBodyBytes    int64
	multipartMemory int64
	callTimeout     time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithRecorder sets the stats recorder. Nil disables stats.
func WithRecorder(rec stats.Recorder) Option {
	return func(h *Handler) { h.recorder = rec }
}

// WithTempDir sets where uploaded images are written. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(h *Handler) { h.tempDir = dir }
}

// WithMaxBodyBytes caps the request body. Zero or less disables the cap.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) { h.maxBodyBytes = n }
}

// WithMultipartMemory sets how much of a multipart body is kept in memory.
func WithMultipartMemory(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.multipartMemory = n
		}
	}
}

// WithCallTimeout bounds each chain call. By default calls are bounded only
// by the request context.
func WithCallTimeout(d time.Duration) Option {
	return func(h *Handler) { h.callTimeout = d }
}

// NewHandler returns a Handler dispatching to chains. Every chain must be set.
func NewHandler(chains chain.Set, opts ...Option) (*Handler, error) {
	if err := chains.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "incomplete chain set", err)
	}

	h := &Handler{
		chains:          chains,
		maxBodyBytes:    defaults.MaxBodyBytes,
		multipartMemory: defaults.MultipartMemoryBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP handles POST /krishimitra.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := server.RequestIDFromContext(ctx)

	if h.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.callTimeout)
		defer cancel()
	}

	if h.maxBodyBytes > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	payload, err := ParsePayload(r, h.multipartMemory)
	if err != nil {
		status, code := http.StatusInternalServerError, errors.ErrCodeInternal
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			status, code = http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidRequest
		}
		slog.Error("failed to parse request",
			"requestID", requestID,
			"error", err,
		)
		h.record(ctx, statsModuleUnclassified, stats.OutcomeError)
		server.WriteError(w, r, status, code, err.Error())
		return
	}
	defer func() {
		if cerr := payload.Close(); cerr != nil {
			slog.Warn("failed to remove multipart parts", "requestID", requestID, "error", cerr)
		}
	}()

	category := Classify(payload.HasFile(), payload.Fields)

	slog.Debug("payload received",
		"requestID", requestID,
		"category", category,
		"file", payload.HasFile(),
		"keys", payload.Keys(),
	)

	if category == CategoryInvalid {
		h.record(ctx, statsModuleUnclassified, stats.OutcomeInvalid)
		serializer.RespondJSON(w, http.StatusOK, server.ErrorResponse{Error: InvalidInputMessage})
		return
	}

	module := category.Module()
	start := time.Now()
	result, err := h.invoke(ctx, category, payload)
	chainDuration.WithLabelValues(module).Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Error("chain failed",
			"requestID", requestID,
			"module", module,
			"error", err,
		)
		h.record(ctx, module, stats.OutcomeError)
		server.WriteError(w, r, http.StatusInternalServerError, errors.CodeOf(err), err.Error())
		return
	}

	h.record(ctx, module, stats.OutcomeOK)

	if category == CategoryQnA {
		serializer.RespondJSON(w, http.StatusOK, AnswerEnvelope{Answer: result, Module: module})
		return
	}
	serializer.RespondJSON(w, http.StatusOK, ResultEnvelope{Module: module, Result: result})
}

// invoke runs the chain for category. A panicking chain is reported as an error.
func (h *Handler) invoke(ctx context.Context, category Category, p *Payload) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			chainPanics.Inc()
			switch v := rec.(type) {
			case error:
				err = v
			default:
				err = stderrors.New(fmt.Sprint(v))
			}
			result = nil
		}
	}()

	switch category {
	case CategoryDisease:
		src, openErr := p.File.Open()
		if openErr != nil {
			return nil, fmt.Errorf("open uploaded file: %w", openErr)
		}
		defer src.Close()

		err = withTempImage(h.tempDir, src, func(path string) error {
			var callErr error
			result, callErr = h.chains.Leaf.AnalyzeLeaf(ctx, path)
			return callErr
		})
		return result, err
	case CategoryQnA:
		return h.chains.QnA.Answer(ctx, p.Fields["query"])
	case CategoryIrrigation:
		return h.chains.Irrigation.AnalyzeIrrigation(ctx, p.Fields)
	case CategorySoil:
		return h.chains.Soil.AnalyzeSoil(ctx, p.Fields)
	case CategoryCrop:
		return h.chains.Crop.RecommendCrop(ctx, p.Fields)
	default:
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("no chain for category %q", category))
	}
}

// record counts the outcome and stores it in the stats recorder. Recorder
// failures are logged and never change the response.
func (h *Handler) record(ctx context.Context, module string, outcome stats.Outcome) {
	dispatchTotal.WithLabelValues(module, string(outcome)).Inc()
	if h.recorder == nil {
		return
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaults.StatsRecordTimeout)
	defer cancel()

	if err := h.recorder.Record(rctx, stats.Event{Module: module, Outcome: outcome, At: time.Now()}); err != nil {
		statsRecordErrors.Inc()
		slog.Warn("failed to record dispatch stats",
			"module", module,
			"outcome", outcome,
			"error", err,
		)
	}
}

// HandleStats serves GET /stats with per-module dispatch counters.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		serializer.RespondJSON(w, http.StatusOK, StatsResponse{Modules: map[string]stats.Counters{}})
		return
	}

	snap, err := h.recorder.Snapshot(r.Context())
	if err != nil {
		slog.Warn("failed to read dispatch stats", "error", err)
		server.WriteErrorFromErr(w, r, errors.Wrap(errors.ErrCodeUnavailable, "stats unavailable", err), "stats unavailable")
		return
	}
	serializer.RespondJSON(w, http.StatusOK, StatsResponse{Modules: snap})
}
