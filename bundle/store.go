// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/errdef"
)

// ErrNotBundle is returned when a manifest is not a skills bundle.
var ErrNotBundle = errors.New("not a skills bundle artifact")

// Store provides local bundle storage backed by an OCI Image Layout.
type Store struct {
	root  string
	inner *oci.Store
}

// NewStore creates a new local OCI store at the given root directory.
// The directory is initialized as an OCI Image Layout with blobs/, oci-layout, and index.json.
func NewStore(root string) (*Store, error) {
	inner, err := oci.New(root)
	if err != nil {
		return nil, fmt.Errorf("creating OCI store at %s: %w", root, err)
	}

	return &Store{root: root, inner: inner}, nil
}

// StoreRoot returns the bundle store root within the given data home directory.
func StoreRoot(dataHome string) string {
	return filepath.Join(dataHome, "bmad-skills", "bundles")
}

// DefaultStoreRoot returns the store root under the XDG data home.
func DefaultStoreRoot() string {
	return StoreRoot(xdg.DataHome)
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// PutBlob stores a blob and returns its digest.
func (s *Store) PutBlob(ctx context.Context, content []byte) (digest.Digest, error) {
	d := digest.FromBytes(content)
	desc := ocispec.Descriptor{
		MediaType: "application/octet-stream",
		Digest:    d,
		Size:      int64(len(content)),
	}

	if err := s.inner.Push(ctx, desc, bytes.NewReader(content)); err != nil {
		if errors.Is(err, errdef.ErrAlreadyExists) {
			return d, nil
		}
		return "", fmt.Errorf("writing blob: %w", err)
	}

	return d, nil
}

// GetBlob retrieves a blob by digest.
func (s *Store) GetBlob(ctx context.Context, d digest.Digest) ([]byte, error) {
	data, err := s.fetchContent(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("blob not found: %s: %w", d, err)
	}
	return data, nil
}

// PutManifest stores a manifest and returns its digest.
func (s *Store) PutManifest(ctx context.Context, content []byte) (digest.Digest, error) {
	d := digest.FromBytes(content)

	var header struct {
		MediaType string `json:"mediaType"`
	}
	mediaType := "application/octet-stream"
	if err := json.Unmarshal(content, &header); err == nil && header.MediaType != "" {
		mediaType = header.MediaType
	}

	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    d,
		Size:      int64(len(content)),
	}

	if err := s.inner.Push(ctx, desc, bytes.NewReader(content)); err != nil {
		if errors.Is(err, errdef.ErrAlreadyExists) {
			return d, nil
		}
		return "", fmt.Errorf("writing manifest: %w", err)
	}

	return d, nil
}

// GetManifest retrieves a manifest by digest.
func (s *Store) GetManifest(ctx context.Context, d digest.Digest) ([]byte, error) {
	data, err := s.fetchContent(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("manifest not found: %s: %w", d, err)
	}
	return data, nil
}

// Tag associates a tag with a manifest digest.
func (s *Store) Tag(ctx context.Context, d digest.Digest, tag string) error {
	desc, err := s.inner.Resolve(ctx, d.String())
	if err != nil {
		return fmt.Errorf("resolving digest for tag: %w", err)
	}

	if err := s.inner.Tag(ctx, desc, tag); err != nil {
		return fmt.Errorf("tagging: %w", err)
	}

	return nil
}

// Resolve resolves a tag to a manifest digest.
func (s *Store) Resolve(ctx context.Context, tag string) (digest.Digest, error) {
	desc, err := s.inner.Resolve(ctx, tag)
	if err != nil {
		return "", fmt.Errorf("tag not found: %s: %w", tag, err)
	}
	return desc.Digest, nil
}

// ListTags returns all tags in the store, excluding digest references.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := s.inner.Tags(ctx, "", func(t []string) error {
		for _, tag := range t {
			if _, err := digest.Parse(tag); err == nil {
				continue
			}
			tags = append(tags, tag)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	sort.Strings(tags)
	return tags, nil
}

// PushOptions configures Push.
type PushOptions struct {
	// Tag is applied to the stored manifest when set.
	Tag string
	// Created is recorded as the manifest creation time.
	Created time.Time
}

// PushResult describes a stored bundle.
type PushResult struct {
	ManifestDigest digest.Digest
	LayerDigest    digest.Digest
	Tag            string
}

// Push stores archive as a single-layer OCI artifact.
func (s *Store) Push(ctx context.Context, archive *Archive, opts PushOptions) (*PushResult, error) {
	if archive == nil || len(archive.Data) == 0 {
		return nil, fmt.Errorf("empty bundle archive")
	}

	layerDigest, err := s.PutBlob(ctx, archive.Data)
	if err != nil {
		return nil, fmt.Errorf("storing layer blob: %w", err)
	}
	if _, err := s.PutBlob(ctx, ocispec.DescriptorEmptyJSON.Data); err != nil {
		return nil, fmt.Errorf("storing config blob: %w", err)
	}

	skillsJSON, err := json.Marshal(archive.Skills)
	if err != nil {
		return nil, fmt.Errorf("encoding skills annotation: %w", err)
	}
	created := opts.Created
	if created.IsZero() {
		created = time.Unix(0, 0).UTC()
	}

	manifest := ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactTypeBundle,
		Config:       ocispec.DescriptorEmptyJSON,
		Layers: []ocispec.Descriptor{{
			MediaType: ocispec.MediaTypeImageLayerGzip,
			Digest:    layerDigest,
			Size:      int64(len(archive.Data)),
			Annotations: map[string]string{
				ocispec.AnnotationTitle: LayerTitle,
			},
		}},
		Annotations: map[string]string{
			ocispec.AnnotationCreated: created.UTC().Format(time.RFC3339),
			AnnotationBundleVersion:   archive.Version,
			AnnotationBundleSkills:    string(skillsJSON),
		},
	}

	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	manifestDigest, err := s.PutManifest(ctx, manifestBytes)
	if err != nil {
		return nil, fmt.Errorf("storing manifest: %w", err)
	}

	if opts.Tag != "" {
		if err := s.Tag(ctx, manifestDigest, opts.Tag); err != nil {
			return nil, err
		}
	}

	return &PushResult{ManifestDigest: manifestDigest, LayerDigest: layerDigest, Tag: opts.Tag}, nil
}

// Pulled is a bundle read back from the store.
type Pulled struct {
	ManifestDigest digest.Digest
	Data           []byte
	Version        string
	Skills         []string
}

// Pull returns the archive stored under ref, a tag or a manifest digest.
// The layer content is checked against its descriptor.
func (s *Store) Pull(ctx context.Context, ref string) (*Pulled, error) {
	d, err := s.resolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	raw, err := s.GetManifest(ctx, d)
	if err != nil {
		return nil, err
	}
	var manifest ocispec.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", d, err)
	}
	if manifest.ArtifactType != ArtifactTypeBundle {
		return nil, fmt.Errorf("%s has artifact type %q: %w", ref, manifest.ArtifactType, ErrNotBundle)
	}
	if len(manifest.Layers) != 1 {
		return nil, fmt.Errorf("%s has %d layers, want 1: %w", ref, len(manifest.Layers), ErrNotBundle)
	}

	layer := manifest.Layers[0]
	if layer.MediaType != ocispec.MediaTypeImageLayerGzip {
		return nil, fmt.Errorf("%s layer has media type %q: %w", ref, layer.MediaType, ErrNotBundle)
	}
	if layer.Size > MaxDecompressedSize {
		return nil, fmt.Errorf("%s layer exceeds maximum size of %d bytes", ref, MaxDecompressedSize)
	}

	data, err := s.GetBlob(ctx, layer.Digest)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != layer.Size || digest.FromBytes(data) != layer.Digest {
		return nil, fmt.Errorf("layer %s does not match its descriptor", layer.Digest)
	}

	return &Pulled{
		ManifestDigest: d,
		Data:           data,
		Version:        manifest.Annotations[AnnotationBundleVersion],
		Skills:         ParseSkillsAnnotation(manifest.Annotations),
	}, nil
}

func (s *Store) resolveRef(ctx context.Context, ref string) (digest.Digest, error) {
	if d, err := digest.Parse(ref); err == nil {
		return d, nil
	}
	d, err := s.Resolve(ctx, ref)
	if err == nil {
		return d, nil
	}
	if tags, listErr := s.ListTags(ctx); listErr == nil && len(tags) > 0 {
		return "", fmt.Errorf("%w (available: %s)", err, strings.Join(tags, ", "))
	}
	return "", err
}

// fetchContent retrieves raw content by digest from the underlying store.
func (s *Store) fetchContent(ctx context.Context, d digest.Digest) ([]byte, error) {
	// oci.Store's Fetch only uses the Digest field to locate blobs in blobs/<algo>/<hex>.
	rc, err := s.inner.Fetch(ctx, ocispec.Descriptor{Digest: d})
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}
