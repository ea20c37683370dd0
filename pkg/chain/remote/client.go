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

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/krishimitra/krishimitra-api/pkg/chain"
	"github.com/krishimitra/krishimitra-api/pkg/errors"
	"github.com/krishimitra/krishimitra-api/pkg/serializer"
)

const (
	pathDisease    = "disease"
	pathQnA        = "qna"
	pathIrrigation = "irrigation"
	pathSoil       = "soil"
	pathCrop       = "crop"

	// maxResponseBytes caps how much of a chain response is read.
	maxResponseBytes = 32 << 20
)

// Client calls the remote chain service. It implements chain.Backend.
type Client struct {
	base *url.URL
	hc   *http.Client
}

var _ chain.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default pooled HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// New returns a Client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid chain service url", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"chain service url must be absolute http(s)", map[string]any{"url": baseURL})
	}

	c := &Client{
		base: u,
		hc:   serializer.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AnalyzeLeaf uploads the image at imagePath to the disease chain.
func (c *Client) AnalyzeLeaf(ctx context.Context, imagePath string) (any, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "open leaf image", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "build upload", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "read leaf image", err)
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "build upload", err)
	}

	return c.post(ctx, pathDisease, mw.FormDataContentType(), &body)
}

// Answer sends the query to the Q&A chain.
func (c *Client) Answer(ctx context.Context, query string) (any, error) {
	return c.postJSON(ctx, pathQnA, map[string]string{"query": query})
}

// AnalyzeIrrigation sends the field map to the irrigation chain.
func (c *Client) AnalyzeIrrigation(ctx context.Context, fields chain.Fields) (any, error) {
	return c.postJSON(ctx, pathIrrigation, fields)
}

// AnalyzeSoil sends the field map to the soil chain.
func (c *Client) AnalyzeSoil(ctx context.Context, fields chain.Fields) (any, error) {
	return c.postJSON(ctx, pathSoil, fields)
}

// RecommendCrop sends the field map to the crop recommendation chain.
func (c *Client) RecommendCrop(ctx context.Context, fields chain.Fields) (any, error) {
	return c.postJSON(ctx, pathCrop, fields)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) (any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "encode chain request", err)
	}
	return c.post(ctx, endpoint, "application/json", bytes.NewReader(raw))
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader) (any, error) {
	target := c.base.JoinPath(endpoint).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "build chain request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", serializer.HTTPClientUserAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		code := errors.ErrCodeUpstream
		if stderrors.Is(err, context.DeadlineExceeded) {
			code = errors.ErrCodeTimeout
		}
		return nil, errors.WrapWithContext(code, fmt.Sprintf("%s chain request failed", endpoint), err,
			map[string]any{"url": target})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, fmt.Sprintf("read %s chain response", endpoint), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewWithContext(errors.ErrCodeUpstream,
			fmt.Sprintf("%s chain returned %d: %s", endpoint, resp.StatusCode, upstreamMessage(resp, data)),
			map[string]any{"url": target, "status": resp.StatusCode})
	}

	return decodeResult(data), nil
}

// decodeResult returns the JSON value in data, the trimmed text when data is
// not JSON, or nil when it is empty.
func decodeResult(data []byte) any {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(trimmed)
	}
	return v
}

func upstreamMessage(resp *http.Response, data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if text := strings.TrimSpace(string(data)); text != "" && len(text) <= 512 {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
