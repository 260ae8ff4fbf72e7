// Package archive holds the data model shared by the package
// synchronization engine: source/binary packages, suites, and the
// facades the engine consumes to read and write an archive.
package archive

// Component is a subdivision of a suite, e.g. "main" or "contrib".
type Component string

// Architecture is a target CPU/ABI tag, e.g. "amd64", or the
// pseudo-architecture "source".
type Architecture string

// ArchitectureSource is the pseudo-architecture used for source package
// enumeration; it is never a binary-build target.
const ArchitectureSource Architecture = "source"

// SuiteName names a release channel within an archive, e.g. "unstable".
type SuiteName string

// FileRef points at a file an archive contains. Filename is the
// canonical basename; the remaining fields are opaque to the engine and
// are only meaningful to whichever Repository implementation produced
// the FileRef.
type FileRef struct {
	Filename string
	Location string
	SHA256   string
	Size     int64
}

// BinaryExpectation is one of a SourcePackage's declared binaries: the
// name and version the source package's control data says it builds.
type BinaryExpectation struct {
	Name    string
	Version string
}

// SourcePackage describes a buildable Debian source package.
type SourcePackage struct {
	Name      string
	Version   string
	Component Component
	Files     []FileRef
	Binaries  []BinaryExpectation
}

// PkgName and PkgVersion satisfy the Named constraint used by NewestMap.
func (p SourcePackage) PkgName() string    { return p.Name }
func (p SourcePackage) PkgVersion() string { return p.Version }

// DSCFile returns the .dsc FileRef among p.Files, and whether one was
// found. A well-formed SourcePackage has exactly one.
func (p SourcePackage) DSCFile() (FileRef, bool) {
	for _, f := range p.Files {
		if hasDotDSCSuffix(f.Filename) {
			return f, true
		}
	}
	return FileRef{}, false
}

func hasDotDSCSuffix(name string) bool {
	const suffix = ".dsc"
	return len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix
}

// BinaryPackage describes an installable .deb (or installer package)
// built from a SourcePackage for one architecture.
type BinaryPackage struct {
	Name          string
	Version       string
	Architecture  Architecture
	Component     Component
	SourceName    string
	SourceVersion string
	File          FileRef
	IsInstaller   bool
}

func (p BinaryPackage) PkgName() string    { return p.Name }
func (p BinaryPackage) PkgVersion() string { return p.Version }

// BelongsTo implements invariant 3: a binary "belongs to" a source
// package iff its source name and version match exactly.
func (p BinaryPackage) BelongsTo(s SourcePackage) bool {
	return p.SourceName == s.Name && p.SourceVersion == s.Version
}

// Suite is a named release channel: its components and the
// architectures it builds for. Parent, when set, is consulted when
// building the target's source-package map (a package inherited from a
// parent suite counts as already present).
type Suite struct {
	Name          SuiteName
	Components    []Component
	Architectures []Architecture
	Parent        *Suite
}

// BinaryArchitectures returns s.Architectures with the "source"
// pseudo-architecture excluded.
func (s Suite) BinaryArchitectures() []Architecture {
	out := make([]Architecture, 0, len(s.Architectures))
	for _, a := range s.Architectures {
		if a == ArchitectureSource {
			continue
		}
		out = append(out, a)
	}
	return out
}
