/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/NVIDIA/gpu-readiness/pkg/diagnoser"
	"github.com/NVIDIA/gpu-readiness/pkg/oci"
	"github.com/NVIDIA/gpu-readiness/pkg/report"
	"github.com/NVIDIA/gpu-readiness/pkg/serializer"
)

type reportOutput struct {
	format      serializer.Format
	target      string
	version     string
	insecureTLS bool
	plainHTTP   bool
}

// writeReport sends the report to its target: stdout, a local file, or an
// OCI registry.
func writeReport(ctx context.Context, r *diagnoser.ClusterReport, out reportOutput) error {
	ref, err := oci.ParseOutputTarget(out.target)
	if err != nil {
		return err
	}
	if ref.IsOCI {
		return publishReport(ctx, r, ref, out)
	}

	if out.format == serializer.FormatText {
		w, err := serializer.OpenOutput(ref.LocalPath)
		if err != nil {
			return fmt.Errorf("failed to open output %q: %w", ref.LocalPath, err)
		}
		defer w.Close()
		_, err = fmt.Fprint(w, report.Render(r))
		return err
	}

	w := serializer.NewFileWriterOrStdout(out.format, ref.LocalPath)
	defer w.Close()
	return w.Serialize(ctx, r)
}

// publishReport renders the report bundle into a temp directory and pushes
// it as an OCI artifact. The bundle carries both the human-readable text
// and the structured JSON document.
func publishReport(ctx context.Context, r *diagnoser.ClusterReport, ref *oci.Reference, out reportOutput) error {
	dir, err := os.MkdirTemp("", "gpuready-report-*")
	if err != nil {
		return fmt.Errorf("failed to create report staging directory: %w", err)
	}
	defer os.RemoveAll(dir)

	textPath := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(textPath, []byte(report.Render(r)), 0o644); err != nil {
		return fmt.Errorf("failed to write report text: %w", err)
	}

	jsonWriter := serializer.NewFileWriterOrStdout(serializer.FormatJSON, filepath.Join(dir, "report.json"))
	if err := jsonWriter.Serialize(ctx, r); err != nil {
		jsonWriter.Close()
		return err
	}
	if err := jsonWriter.Close(); err != nil {
		return err
	}

	if ref.Tag == "" {
		ref.Tag = defaultOCITag()
	}

	result, err := oci.Push(ctx, oci.PushOptions{
		SourceDir:   dir,
		Reference:   ref,
		Version:     out.version,
		PlainHTTP:   out.plainHTTP,
		InsecureTLS: out.insecureTLS,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Report published: %s@%s\n", result.Reference, result.Digest)
	return nil
}
