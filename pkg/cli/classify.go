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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/krishimitra/krishimitra-api/pkg/dispatch"
	"github.com/krishimitra/krishimitra-api/pkg/serializer"
)

// Classification is the output of the classify command.
type Classification struct {
	Category string   `json:"category" yaml:"category"`
	Module   string   `json:"module,omitempty" yaml:"module,omitempty"`
	File     bool     `json:"file" yaml:"file"`
	Keys     []string `json:"keys" yaml:"keys"`
}

func classifyCmd() *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Show which chain a payload would be routed to",
		Description: `Reads a JSON or YAML object and prints the category and chain module the
dispatcher would select for it. No chain is called.

  krishimitrad classify --data soil.json
  echo '{"query":"when to sow wheat?"}' | krishimitrad classify --data -
  krishimitrad classify --data empty.json --with-file`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Payload file (.json, .yaml, .yml) or - for stdin",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "with-file",
				Usage: "Treat the payload as carrying an uploaded image",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   fmt.Sprintf("Output format (supported values: %v)", serializer.SupportedFormats()),
				Value:   string(serializer.FormatJSON),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", outFormat)
			}

			data, err := readPayload(cmd.String("data"))
			if err != nil {
				return err
			}

			c := classify(cmd.Bool("with-file"), data)
			slog.Debug("payload classified", "category", c.Category, "module", c.Module)

			return serializer.NewWriter(outFormat, cmd.Root().Writer).Serialize(ctx, c)
		},
	}
}

func readPayload(path string) (map[string]any, error) {
	r, err := serializer.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload %q: %w", path, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			slog.Warn("failed to close payload", "error", cerr)
		}
	}()

	var data map[string]any
	if err := r.Deserialize(&data); err != nil {
		return nil, fmt.Errorf("failed to read payload %q: %w", path, err)
	}
	return data, nil
}

func classify(withFile bool, data map[string]any) Classification {
	fields := dispatch.FieldsFromMap(data)
	category := dispatch.Classify(withFile, fields)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Classification{
		Category: string(category),
		Module:   category.Module(),
		File:     withFile,
		Keys:     keys,
	}
}
