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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents the output format type.
type Format string

const (
	// FormatJSON outputs data in JSON format.
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format.
	FormatYAML Format = "yaml"
	// FormatText is the human-readable report rendering. It is handled by
	// the report formatter, not this package; the Writer rejects it.
	FormatText Format = "text"
)

func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatText:
		return false
	default:
		return true
	}
}

// SupportedFormats returns all supported output formats.
func SupportedFormats() []string {
	return []string{
		string(FormatText),
		string(FormatJSON),
		string(FormatYAML),
	}
}

// Serializer writes one value to the configured destination.
type Serializer interface {
	Serialize(ctx context.Context, value any) error
}

// Writer serializes values as JSON or YAML.
// Close must be called when the writer owns a file handle.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a Writer with the given format and destination.
// A nil output means stdout; an unknown format defaults to JSON.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", slog.String("format", string(format)))
		format = FormatJSON
	}
	return &Writer{format: format, output: output}
}

// NewFileWriterOrStdout creates a Writer for the given path, falling back
// to stdout when the path is empty or cannot be created.
func NewFileWriterOrStdout(format Format, path string) *Writer {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewWriter(format, os.Stdout)
	}

	file, err := os.Create(trimmed)
	if err != nil {
		slog.Error("failed to create output file, falling back to stdout",
			slog.String("path", trimmed), slog.String("error", err.Error()))
		return NewWriter(format, os.Stdout)
	}

	w := NewWriter(format, file)
	w.closer = file
	return w
}

// Close releases the underlying file handle, if any. Safe to call on
// stdout-backed writers and safe to call more than once.
func (w *Writer) Close() error {
	if w.closer != nil {
		c := w.closer
		w.closer = nil
		return c.Close()
	}
	return nil
}

// Serialize writes the value in the configured format.
func (w *Writer) Serialize(_ context.Context, value any) error {
	switch w.format {
	case FormatJSON:
		encoder := json.NewEncoder(w.output)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to serialize to JSON: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w.output)
		encoder.SetIndent(2)
		defer encoder.Close()
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to serialize to YAML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
}

// OpenOutput opens the path for writing, or returns stdout when the path is
// empty. The caller owns the returned closer; closing stdout is a no-op.
func OpenOutput(path string) (io.WriteCloser, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(trimmed)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
