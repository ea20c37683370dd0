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

package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/krishimitra/krishimitra-api/pkg/chain"
	"github.com/krishimitra/krishimitra-api/pkg/defaults"
	"github.com/krishimitra/krishimitra-api/pkg/errors"
)

// generateFunc runs a single generation request.
type generateFunc func(ctx context.Context, p prompt, parts []genai.Part) (*genai.GenerateContentResponse, error)

// Client runs the KrishiMitra chains on Gemini. It implements chain.Backend.
type Client struct {
	gc          *genai.Client
	model       string
	generate    generateFunc
	maxAttempts int
	backoff     time.Duration
}

var _ chain.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithMaxAttempts sets how many times a failed generation is attempted.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay between attempts; attempt n waits n*d.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// New connects a Client to Gemini with the given API key and model name.
func New(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "GEMINI_API_KEY is empty")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "gemini model is empty")
	}

	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "create gemini client", err)
	}

	c := &Client{
		gc:          gc,
		model:       model,
		maxAttempts: defaults.ChainMaxAttempts,
		backoff:     defaults.ChainRetryBackoff,
	}
	c.generate = c.generateContent
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the underlying genai client.
func (c *Client) Close() error {
	if c == nil || c.gc == nil {
		return nil
	}
	return c.gc.Close()
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

func (c *Client) generateContent(ctx context.Context, p prompt, parts []genai.Part) (*genai.GenerateContentResponse, error) {
	m := c.gc.GenerativeModel(c.model)
	if m == nil {
		return nil, fmt.Errorf("gemini: model is nil")
	}

	mime := "text/plain"
	if p.jsonResult {
		mime = "application/json"
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(p.temperature),
		ResponseMIMEType: mime,
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(p.system)},
	}
	return m.GenerateContent(ctx, parts...)
}

// AnalyzeLeaf sends the leaf image to the disease prompt.
func (c *Client) AnalyzeLeaf(ctx context.Context, imagePath string) (any, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "read leaf image", err)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "leaf image is empty")
	}

	parts := []genai.Part{
		genai.Text("Diagnose this crop leaf. Respond strictly with JSON."),
		&genai.Blob{MIMEType: imageMIME(data), Data: data},
	}
	return c.run(ctx, diseasePrompt, parts)
}

// Answer sends the farmer's question to the Q&A prompt and returns the answer text.
func (c *Client) Answer(ctx context.Context, query string) (any, error) {
	return c.run(ctx, qnaPrompt, []genai.Part{genai.Text(query)})
}

// AnalyzeIrrigation runs the irrigation prompt over the field map.
func (c *Client) AnalyzeIrrigation(ctx context.Context, fields chain.Fields) (any, error) {
	return c.run(ctx, irrigationPrompt, []genai.Part{genai.Text(fieldsText(fields))})
}

// AnalyzeSoil runs the soil prompt over the field map.
func (c *Client) AnalyzeSoil(ctx context.Context, fields chain.Fields) (any, error) {
	return c.run(ctx, soilPrompt, []genai.Part{genai.Text(fieldsText(fields))})
}

// RecommendCrop runs the crop recommendation prompt over the field map.
func (c *Client) RecommendCrop(ctx context.Context, fields chain.Fields) (any, error) {
	return c.run(ctx, cropPrompt, []genai.Part{genai.Text(fieldsText(fields))})
}

func (c *Client) run(ctx context.Context, p prompt, parts []genai.Part) (any, error) {
	attempts := c.maxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.generate(ctx, p, parts)
		if err != nil {
			lastErr = err
			if attempt == attempts {
				break
			}
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(errors.ErrCodeTimeout, fmt.Sprintf("gemini %s canceled", p.name), ctx.Err())
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
			continue
		}

		txt := stripCodeFences(firstText(resp))
		if txt == "" {
			return nil, errors.New(errors.ErrCodeUpstream, fmt.Sprintf("gemini %s: empty response", p.name))
		}
		if !p.jsonResult {
			return txt, nil
		}
		return decodeJSON(txt), nil
	}

	return nil, errors.WrapWithContext(errors.ErrCodeUpstream,
		fmt.Sprintf("gemini %s failed after %d attempts", p.name, attempts), lastErr,
		map[string]any{"model": c.model})
}

// --------------------------- helpers ---------------------------

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeJSON returns the decoded value of s, or s itself when it is not valid JSON.
func decodeJSON(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

// fieldsText renders the field map as sorted "key: value" lines.
func fieldsText(fields chain.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, fields[k])
	}
	return b.String()
}

// imageMIME sniffs the image type, defaulting to JPEG for unrecognized content.
func imageMIME(data []byte) string {
	if mt := http.DetectContentType(data); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return "image/jpeg"
}

func ptrFloat32(v float32) *float32 { return &v }
