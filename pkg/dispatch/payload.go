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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/krishimitra/krishimitra-api/pkg/chain"
)

// FileField is the multipart field carrying a leaf image.
const FileField = "file"

// Payload is the parsed body of a /krishimitra request.
type Payload struct {
	// File is the uploaded image header, nil when no "file" field was sent.
	File   *multipart.FileHeader
	Fields chain.Fields

	form *multipart.Form
}

// HasFile reports whether an image was uploaded.
func (p *Payload) HasFile() bool {
	return p != nil && p.File != nil
}

// Keys returns the sorted field names.
func (p *Payload) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close removes any multipart parts spilled to disk while parsing.
func (p *Payload) Close() error {
	if p == nil || p.form == nil {
		return nil
	}
	return p.form.RemoveAll()
}

// ParsePayload reads the request body. maxMemory bounds how much of a
// multipart body is held in memory before spilling to disk.
func ParsePayload(r *http.Request, maxMemory int64) (*Payload, error) {
	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err == nil {
			mediaType = strings.ToLower(mt)
		}
	}

	switch {
	case mediaType == "multipart/form-data":
		return parseMultipart(r, maxMemory)
	case isJSON(mediaType):
		fields, err := parseJSON(r.Body)
		if err != nil {
			return nil, err
		}
		return &Payload{Fields: fields}, nil
	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		return &Payload{Fields: firstValues(r.PostForm)}, nil
	default:
		return &Payload{Fields: chain.Fields{}}, nil
	}
}

func parseMultipart(r *http.Request, maxMemory int64) (*Payload, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}

	p := &Payload{
		Fields: firstValues(r.MultipartForm.Value),
		form:   r.MultipartForm,
	}
	if files := r.MultipartForm.File[FileField]; len(files) > 0 {
		p.File = files[0]
	}
	return p, nil
}

// parseJSON returns the fields of a JSON object body. A body that is empty,
// unparseable or not a non-empty object yields no fields.
func parseJSON(body io.Reader) (chain.Fields, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || len(obj) == 0 {
		return chain.Fields{}, nil
	}
	return FieldsFromMap(obj), nil
}

// FieldsFromMap flattens decoded JSON or YAML values into string fields.
func FieldsFromMap(m map[string]any) chain.Fields {
	fields := make(chain.Fields, len(m))
	for k, v := range m {
		fields[k] = coerce(v)
	}
	return fields
}

func coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func firstValues(values map[string][]string) chain.Fields {
	fields := make(chain.Fields, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}
	return fields
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}
