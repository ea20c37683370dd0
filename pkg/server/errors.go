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

package server

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/krishimitra/krishimitra-api/pkg/errors"
	"github.com/krishimitra/krishimitra-api/pkg/serializer"
)

// UnauthorizedMessage is the body text for requests rejected by the API key gate.
const UnauthorizedMessage = "Unauthorized — invalid or missing API key."

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error" yaml:"error"`
}

// HTTPStatusFromCode maps an error code to an HTTP status.
func HTTPStatusFromCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUpstream:
		return http.StatusBadGateway
	case errors.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes {"error": message} with the given status. The code is
// exposed in the X-Error-Code header.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code errors.ErrorCode, message string) {

	if code != "" {
		w.Header().Set("X-Error-Code", string(code))
	}
	if statusCode >= http.StatusInternalServerError {
		slog.Debug("error response",
			"requestID", RequestIDFromContext(r.Context()),
			"status", statusCode,
			"code", code,
		)
	}
	serializer.RespondJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorFromErr writes a structured error using its code for the status
// and its message for the body. Other errors become 500 with fallbackMessage.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	var se *errors.StructuredError
	if stderrors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = fallbackMessage
		}
		WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, msg)
		return
	}
	WriteError(w, r, http.StatusInternalServerError, errors.ErrCodeInternal, fallbackMessage)
}
