package repo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/archsync/syncengine/pkg/archive"
)

// ArchiveRepository implements archive.Repository on top of a Repo,
// decoding the standard Debian index formats and materializing pool
// files under a local download directory.
type ArchiveRepository struct {
	repo        Repo
	location    string
	downloadDir string
}

var _ archive.Repository = (*ArchiveRepository)(nil)

// NewArchiveRepository builds an archive.Repository over repo, caching
// materialized files under downloadDir. location is a human-readable
// identifier, e.g. the archive's base URL.
func NewArchiveRepository(repo Repo, location, downloadDir string) *ArchiveRepository {
	return &ArchiveRepository{repo: repo, location: location, downloadDir: downloadDir}
}

func (a *ArchiveRepository) BaseLocation() string { return a.location }

func (a *ArchiveRepository) SourcePackages(ctx context.Context, suite archive.SuiteName, component archive.Component) ([]archive.SourcePackage, error) {
	raw, _, err := a.fetchIndex(ctx, func(c Compression) ([]byte, error) {
		return a.repo.Sources(ctx, string(suite), string(component), c)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching Sources for %s/%s: %w", suite, component, err)
	}

	stanzas, err := decodeSourceStanzas(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding Sources for %s/%s: %w", suite, component, err)
	}

	out := make([]archive.SourcePackage, 0, len(stanzas))
	for _, s := range stanzas {
		if s.Package == "" || s.Version == "" {
			continue
		}

		checksums, err := parseChecksums(s.ChecksumsSha256)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", s.Package, err)
		}
		files := make([]archive.FileRef, 0, len(checksums))
		for _, c := range checksums {
			files = append(files, archive.FileRef{
				Filename: c.Filename,
				Location: poolLocation(string(component), s.Package, c.Filename),
				SHA256:   c.SHA256,
				Size:     c.Size,
			})
		}

		var binaries []archive.BinaryExpectation
		for _, name := range parseBinaryList(s.Binary) {
			binaries = append(binaries, archive.BinaryExpectation{Name: name, Version: s.Version})
		}

		out = append(out, archive.SourcePackage{
			Name:      s.Package,
			Version:   s.Version,
			Component: component,
			Files:     files,
			Binaries:  binaries,
		})
	}
	return out, nil
}

func (a *ArchiveRepository) BinaryPackages(ctx context.Context, suite archive.SuiteName, component archive.Component, arch archive.Architecture) ([]archive.BinaryPackage, error) {
	return a.binaryPackages(ctx, suite, component, arch, false)
}

func (a *ArchiveRepository) InstallerPackages(ctx context.Context, suite archive.SuiteName, component archive.Component, arch archive.Architecture) ([]archive.BinaryPackage, error) {
	return a.binaryPackages(ctx, suite, component, arch, true)
}

func (a *ArchiveRepository) binaryPackages(ctx context.Context, suite archive.SuiteName, component archive.Component, arch archive.Architecture, installer bool) ([]archive.BinaryPackage, error) {
	raw, _, err := a.fetchIndex(ctx, func(c Compression) ([]byte, error) {
		return a.repo.Packages(ctx, string(suite), string(component), string(arch), installer, c)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching Packages for %s/%s/%s: %w", suite, component, arch, err)
	}

	stanzas, err := decodeBinaryStanzas(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding Packages for %s/%s/%s: %w", suite, component, arch, err)
	}

	out := make([]archive.BinaryPackage, 0, len(stanzas))
	for _, s := range stanzas {
		if s.Package == "" || s.Version == "" {
			continue
		}

		sourceName, sourceVersion := sourceOf(s)
		var size int64
		if s.Size != "" {
			size, err = strconv.ParseInt(s.Size, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("binary %s: malformed Size %q: %w", s.Package, s.Size, err)
			}
		}

		out = append(out, archive.BinaryPackage{
			Name:          s.Package,
			Version:       s.Version,
			Architecture:  arch,
			Component:     component,
			SourceName:    sourceName,
			SourceVersion: sourceVersion,
			File: archive.FileRef{
				Filename: filepath.Base(s.Filename),
				Location: poolLocation(string(component), sourceName, filepath.Base(s.Filename)),
				SHA256:   s.SHA256,
				Size:     size,
			},
			IsInstaller: installer,
		})
	}
	return out, nil
}

// Materialize downloads file to a_repository's local download
// directory, skipping the fetch if it is already present.
func (a *ArchiveRepository) Materialize(ctx context.Context, file archive.FileRef) (string, error) {
	path := filepath.Join(a.downloadDir, filepath.FromSlash(file.Location))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	component, pkg, filename, err := splitPoolLocation(file.Location)
	if err != nil {
		return "", fmt.Errorf("materializing %s: %w", file.Filename, err)
	}

	data, err := a.repo.Pool(ctx, component, pkg, filename)
	if err != nil {
		return "", fmt.Errorf("materializing %s: %w", file.Filename, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("materializing %s: %w", file.Filename, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("materializing %s: %w", file.Filename, err)
	}
	return path, nil
}

// fetchIndex tries each of IndexCompressions in turn, returning the
// first successful fetch's raw bytes (still compressed) decompressed,
// and the compression that worked.
func (a *ArchiveRepository) fetchIndex(_ context.Context, fetch func(Compression) ([]byte, error)) ([]byte, Compression, error) {
	var lastErr error
	for _, c := range IndexCompressions {
		raw, err := fetch(c)
		if err != nil {
			lastErr = err
			continue
		}
		decoded, err := decompress(raw, c)
		if err != nil {
			return nil, "", err
		}
		return decoded, c, nil
	}
	return nil, "", fmt.Errorf("no index variant available: %w", lastErr)
}

// poolLocation is the Repo.Pool-addressable location of a file,
// relative to the archive's pool root: "<component>/<source>/<file>".
func poolLocation(component, source, filename string) string {
	return strings.Join([]string{component, source, filename}, "/")
}

func splitPoolLocation(loc string) (component, pkg, filename string, err error) {
	parts := strings.Split(loc, "/")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("malformed pool location %q", loc)
	}
	return parts[0], parts[1], parts[2], nil
}

// sourceOf returns the source package name and version a binary
// stanza belongs to. The Source control field is only present when it
// differs from Package, and may carry an explicit "(version)" suffix
// for a binNMU rebuild that bumped only the binary's version.
func sourceOf(s binaryStanza) (name, version string) {
	name, version = s.Package, s.Version
	if s.Source == "" {
		return name, version
	}

	src := s.Source
	if i := strings.IndexByte(src, '('); i >= 0 {
		name = strings.TrimSpace(src[:i])
		version = strings.Trim(strings.TrimSpace(src[i:]), "()")
	} else {
		name = src
	}
	return name, version
}
