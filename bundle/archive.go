// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"

	"github.com/bacoco/BMad-Skills/env"
	"github.com/bacoco/BMad-Skills/installer"
)

// gzipOSUnknown is the OS value for "unknown" in gzip headers (RFC 1952).
const gzipOSUnknown = 255

// MaxFileSize is the maximum size of a single archive entry (100MB).
const MaxFileSize = 100 * 1024 * 1024

// MaxDecompressedSize is the maximum size of a decompressed archive (100MB).
const MaxDecompressedSize = 100 * 1024 * 1024

// FileEntry is one entry of a bundle archive.
type FileEntry struct {
	Path    string // slash-separated path within the archive
	Content []byte
	Mode    int64 // defaults to 0644, or 0755 for directories
	Dir     bool
}

// PackOptions configures reproducible archive creation.
type PackOptions struct {
	// Epoch is the timestamp written for every entry and the gzip header.
	Epoch time.Time
	// Level is the gzip level (defaults to gzip.BestCompression).
	Level int
}

// DefaultPackOptions returns options honouring SOURCE_DATE_EPOCH.
func DefaultPackOptions(r env.Reader) PackOptions {
	epoch := time.Unix(0, 0).UTC()
	if sde := r.Getenv("SOURCE_DATE_EPOCH"); sde != "" {
		if ts, err := strconv.ParseInt(sde, 10, 64); err == nil {
			epoch = time.Unix(ts, 0).UTC()
		}
	}
	return PackOptions{Epoch: epoch, Level: gzip.BestCompression}
}

// Archive is a packed bundle.
type Archive struct {
	Data    []byte
	Digest  digest.Digest
	Version string
	Skills  []string
	Files   []string
}

// PackDir packs the bundle tree at root into a reproducible .tar.gz.
// Hidden entries are skipped; symlinks and special files are rejected.
// The tree must carry a parseable manifest.
func PackDir(fs afero.Fs, root string, opts PackOptions) (*Archive, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("bundle directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	manifest, err := installer.LoadManifest(fs, root)
	if err != nil {
		return nil, err
	}

	entries, err := collectEntries(fs, root)
	if err != nil {
		return nil, err
	}

	data, err := CompressTar(entries, opts)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Dir {
			files = append(files, e.Path)
		}
	}
	sort.Strings(files)

	return &Archive{
		Data:    data,
		Digest:  digest.FromBytes(data),
		Version: manifest.Version,
		Skills:  manifest.SkillIDs(),
		Files:   files,
	}, nil
}

func collectEntries(fs afero.Fs, root string) ([]FileEntry, error) {
	var entries []FileEntry
	err := afero.Walk(fs, root, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("getting relative path: %w", err)
		}
		rel = filepath.ToSlash(rel)

		if strings.HasPrefix(path.Base(rel), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("symlinks not allowed in bundle: %s", rel)
		}

		if info.IsDir() {
			entries = append(entries, FileEntry{Path: rel, Dir: true})
			return nil
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("non-regular file not allowed in bundle: %s", rel)
		}

		content, err := afero.ReadFile(fs, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}
		entries = append(entries, FileEntry{
			Path:    rel,
			Content: content,
			Mode:    int64(info.Mode().Perm()),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking bundle directory: %w", err)
	}
	return entries, nil
}

// Unpack extracts a .tar.gz bundle into dest, which is created.
func Unpack(fs afero.Fs, data []byte, dest string) error {
	entries, err := DecompressTar(data)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	for _, e := range entries {
		target := filepath.Join(dest, filepath.FromSlash(e.Path))
		if e.Dir {
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		mode := os.FileMode(e.Mode).Perm()
		if mode == 0 {
			mode = 0o644
		}
		if err := afero.WriteFile(fs, target, e.Content, mode); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
	}
	return nil
}

// CreateTar creates a reproducible tar archive. Entries are sorted by path
// and written with normalised PAX headers.
func CreateTar(files []FileEntry, epoch time.Time) ([]byte, error) {
	if epoch.IsZero() {
		epoch = time.Unix(0, 0).UTC()
	}

	sorted := make([]FileEntry, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for _, f := range sorted {
		hdr := &tar.Header{
			Name:     f.Path,
			Mode:     f.Mode,
			ModTime:  epoch,
			Typeflag: tar.TypeReg,
			Format:   tar.FormatPAX,
		}
		if f.Dir {
			hdr.Name = strings.TrimSuffix(f.Path, "/") + "/"
			hdr.Typeflag = tar.TypeDir
			if hdr.Mode == 0 {
				hdr.Mode = 0o755
			}
		} else {
			hdr.Size = int64(len(f.Content))
			if hdr.Mode == 0 {
				hdr.Mode = 0o644
			}
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("writing tar header for %s: %w", f.Path, err)
		}
		if f.Dir {
			continue
		}
		if _, err := tw.Write(f.Content); err != nil {
			return nil, fmt.Errorf("writing tar content for %s: %w", f.Path, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar writer: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractTar reads every entry of a tar archive with a per-file size limit.
// It rejects symlinks, hardlinks, device entries and paths escaping the root.
func ExtractTar(data []byte, maxFileSize int64) ([]FileEntry, error) {
	tr := tar.NewReader(bytes.NewReader(data))
	var files []FileEntry

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar header: %w", err)
		}

		if err := validateTarPath(hdr.Name); err != nil {
			return nil, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			files = append(files, FileEntry{
				Path: strings.TrimSuffix(path.Clean(hdr.Name), "/"),
				Mode: hdr.Mode,
				Dir:  true,
			})
			continue
		case tar.TypeSymlink, tar.TypeLink:
			return nil, fmt.Errorf("archive contains disallowed link type: %s", hdr.Name)
		case tar.TypeReg:
		default:
			return nil, fmt.Errorf("archive contains disallowed entry type %d: %s", hdr.Typeflag, hdr.Name)
		}

		if hdr.Size > maxFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", hdr.Name, maxFileSize)
		}

		content, err := io.ReadAll(io.LimitReader(tr, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("reading tar content for %s: %w", hdr.Name, err)
		}
		if int64(len(content)) > maxFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", hdr.Name, maxFileSize)
		}

		files = append(files, FileEntry{
			Path:    path.Clean(hdr.Name),
			Content: content,
			Mode:    hdr.Mode,
		})
	}

	return files, nil
}

// validateTarPath checks that a tar entry path stays inside the archive root.
func validateTarPath(p string) error {
	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("path traversal detected in archive: %s", p)
	}
	if path.IsAbs(cleaned) {
		return fmt.Errorf("absolute path not allowed in archive: %s", p)
	}
	if cleaned == "." {
		return fmt.Errorf("empty path not allowed in archive: %q", p)
	}
	return nil
}

// Compress gzips data with a fixed header so identical input gives
// identical output.
func Compress(data []byte, opts PackOptions) ([]byte, error) {
	if opts.Level == 0 {
		opts.Level = gzip.BestCompression
	}
	epoch := opts.Epoch
	if epoch.IsZero() {
		epoch = time.Unix(0, 0).UTC()
	}

	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}
	gw.ModTime = epoch
	gw.Name = ""
	gw.Comment = ""
	gw.OS = gzipOSUnknown

	if _, err := gw.Write(data); err != nil {
		return nil, fmt.Errorf("writing gzip data: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress gunzips data, refusing output larger than maxSize.
func Decompress(data []byte, maxSize int64) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() { _ = gr.Close() }()

	result, err := io.ReadAll(io.LimitReader(gr, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading gzip data: %w", err)
	}
	if int64(len(result)) > maxSize {
		return nil, fmt.Errorf("decompressed data exceeds maximum size of %d bytes", maxSize)
	}
	return result, nil
}

// CompressTar creates a reproducible .tar.gz from the given entries.
func CompressTar(files []FileEntry, opts PackOptions) ([]byte, error) {
	tarData, err := CreateTar(files, opts.Epoch)
	if err != nil {
		return nil, fmt.Errorf("creating tar: %w", err)
	}
	gzipData, err := Compress(tarData, opts)
	if err != nil {
		return nil, fmt.Errorf("compressing tar: %w", err)
	}
	return gzipData, nil
}

// DecompressTar extracts the entries of a .tar.gz archive.
func DecompressTar(data []byte) ([]FileEntry, error) {
	tarData, err := Decompress(data, MaxDecompressedSize)
	if err != nil {
		return nil, fmt.Errorf("decompressing gzip: %w", err)
	}
	files, err := ExtractTar(tarData, MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("extracting tar: %w", err)
	}
	return files, nil
}
