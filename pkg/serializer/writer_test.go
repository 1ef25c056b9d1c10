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

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func TestSerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)

	require.NoError(t, w.Serialize(context.Background(), sample{Name: "gpu", Count: 3}))

	var got sample
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample{Name: "gpu", Count: 3}, got)
}

func TestSerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatYAML, &buf)

	require.NoError(t, w.Serialize(context.Background(), sample{Name: "gpu", Count: 3}))

	var got sample
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample{Name: "gpu", Count: 3}, got)
}

func TestUnknownFormatDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)

	require.NoError(t, w.Serialize(context.Background(), sample{Name: "gpu"}))
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestFileWriterOrStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	w := NewFileWriterOrStdout(FormatJSON, path)

	require.NoError(t, w.Serialize(context.Background(), sample{Name: "gpu"}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close()) // idempotent

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
