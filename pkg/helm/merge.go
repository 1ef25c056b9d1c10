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

package helm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
)

// LoadFragment reads the known-good values fragment. A missing file is a
// FIX_FILE_NOT_FOUND error so callers can tell it apart from a parse error.
func LoadFragment(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFixFileNotFound,
				fmt.Sprintf("values fragment %s not found", path), err)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			fmt.Sprintf("failed to read values fragment %s", path), err)
	}

	fragment := map[string]any{}
	if err := yaml.Unmarshal(data, &fragment); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("failed to parse values fragment %s", path), err)
	}
	return fragment, nil
}

// Merge deep-merges overlay over base and returns a new document. Nested
// maps merge recursively; on scalar and list conflicts the overlay wins;
// base keys absent from the overlay are preserved untouched.
func Merge(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}

	for k, v := range overlay {
		baseMap, baseOK := merged[k].(map[string]any)
		overlayMap, overlayOK := v.(map[string]any)
		if baseOK && overlayOK {
			merged[k] = Merge(baseMap, overlayMap)
			continue
		}
		merged[k] = v
	}

	return merged
}
