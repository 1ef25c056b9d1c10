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

package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	apperrors "github.com/NVIDIA/gpu-readiness/pkg/errors"
)

// ArtifactType is the media type of published report bundles.
const ArtifactType = "application/vnd.nvidia.gpuready.report"

// PushOptions configures a report bundle push.
type PushOptions struct {
	// SourceDir holds the report files to publish.
	SourceDir string

	// Reference is the registry target. Tag must be set.
	Reference *Reference

	// Version stamps the artifact manifest.
	Version string

	// PlainHTTP uses HTTP for the registry connection.
	PlainHTTP bool

	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// PushResult describes the published artifact.
type PushResult struct {
	Digest    string
	Reference string
}

// Push publishes the source directory as a single-layer OCI artifact.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	ref := opts.Reference
	if ref == nil || !ref.IsOCI {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
			"OCI reference required for push")
	}
	if ref.Tag == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
			"tag required for OCI push")
	}

	absDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to resolve report directory", err)
	}

	fs, err := file.New(absDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()
	fs.TarReproducible = true

	layer, err := fs.Add(ctx, ".", ociv1.MediaTypeImageLayerGzip, absDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to add report files to store", err)
	}

	manifest, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType,
		oras.PackManifestOptions{
			Layers: []ociv1.Descriptor{layer},
			ManifestAnnotations: map[string]string{
				"org.opencontainers.image.title":   "GPU Readiness Report",
				"org.opencontainers.image.vendor":  "NVIDIA",
				"org.opencontainers.image.version": opts.Version,
			},
		})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to pack manifest", err)
	}

	if err := fs.Tag(ctx, manifest, ref.Tag); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to tag manifest", err)
	}

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", ref.Registry, ref.Repository))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest,
			"failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = newAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	desc, err := oras.Copy(ctx, fs, ref.Tag, repo, ref.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeExecutionFailure,
			fmt.Sprintf("failed to push report to %s", ref), err)
	}

	slog.Info("published report bundle",
		slog.String("reference", ref.String()),
		slog.String("digest", desc.Digest.String()))

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: ref.String(),
	}, nil
}

// newAuthClient builds the registry HTTP client with Docker credential
// support.
func newAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	return &auth.Client{
		Client:     &http.Client{Transport: transport},
		Cache:      auth.NewCache(),
		Credential: credentials.Credential(credStore),
	}
}
