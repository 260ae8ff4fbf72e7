// Package repo implements archive.Repository against a real Debian
// archive layout: dists/<suite>/<component>/{source/Sources,
// binary-<arch>/Packages, debian-installer/binary-<arch>/Packages} and
// pool/<component>/<letter>/<source>/<file>.
package repo

import "context"

// Repo is a source for Debian archive index and pool files, addressed
// the way the archive itself addresses them.
type Repo interface {
	// InRelease fetches a signed description of the repository and its
	// contents.
	InRelease(ctx context.Context, dist string) ([]byte, error)

	// Packages fetches a binary package index for one component/arch,
	// under the given compression (possibly CompressionNone). installer
	// selects the debian-installer udeb index rather than the regular
	// one.
	Packages(ctx context.Context, dist, component, arch string, installer bool, compression Compression) ([]byte, error)

	// Sources fetches a source package index for one component.
	Sources(ctx context.Context, dist, component string, compression Compression) ([]byte, error)

	// Pool fetches a file from the pool.
	Pool(ctx context.Context, component, pkg, filename string) ([]byte, error)
}

// IndexCompressions is the order in which compressed index variants are
// tried: archives increasingly drop uncompressed indices, so xz is
// tried ahead of gzip, which is tried ahead of none.
var IndexCompressions = []Compression{CompressionXZ, CompressionGZIP, CompressionNone}
