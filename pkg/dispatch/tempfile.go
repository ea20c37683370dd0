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
	"fmt"
	"io"
	"os"
)

const tempImagePattern = "leaf-*.jpg"

// withTempImage copies src into a new uniquely named .jpg file in dir (the
// system temp dir when empty), calls fn with its path, and removes the file
// once fn returns or panics.
func withTempImage(dir string, src io.Reader, fn func(path string) error) error {
	f, err := os.CreateTemp(dir, tempImagePattern)
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	path := f.Name()

	tempImagesInUse.Inc()
	defer func() {
		tempImagesInUse.Dec()
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			tempImageRemoveErrors.Inc()
		}
	}()

	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp image: %w", err)
	}

	return fn(path)
}
