package archive

import "log/slog"

// Named is the constraint NewestMap operates over: anything with a
// package name and a Debian version string.
type Named interface {
	PkgName() string
	PkgVersion() string
}

// versionCompare matches pkg/version.Compare's signature without
// importing it directly, so archive stays free of a hard dependency on
// the version-parsing library it's built on.
type versionCompare func(a, b string) (int, error)

// NewestMap builds name -> newest package under cmp, keeping the first
// encountered entry on a version tie (invariant 1). Entries whose
// version fails to compare against the incumbent are logged and
// skipped, leaving the incumbent in place.
func NewestMap[T Named](pkgs []T, cmp versionCompare) map[string]T {
	out := make(map[string]T, len(pkgs))
	for _, p := range pkgs {
		name := p.PkgName()
		existing, ok := out[name]
		if !ok {
			out[name] = p
			continue
		}

		c, err := cmp(p.PkgVersion(), existing.PkgVersion())
		if err != nil {
			slog.Warn("skipping package with malformed version",
				slog.String("package", name),
				slog.String("version", p.PkgVersion()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if c > 0 {
			out[name] = p
		}
	}
	return out
}

// NewBinaryIndex builds a binary package index from regular and
// installer packages. When includeInstaller is true, installer
// packages are merged in after the regular ones, replacing a regular
// package of the same name only when strictly newer (§4.2).
func NewBinaryIndex(regular, installer []BinaryPackage, includeInstaller bool, cmp versionCompare) map[string]BinaryPackage {
	idx := NewestMap(regular, cmp)
	if !includeInstaller {
		return idx
	}

	instIdx := NewestMap(installer, cmp)
	for name, ip := range instIdx {
		existing, ok := idx[name]
		if ok {
			c, err := cmp(ip.Version, existing.Version)
			if err != nil || c <= 0 {
				continue
			}
		}
		idx[name] = ip
	}
	return idx
}

// MergeSourceIndex merges a child suite's source-package index over its
// parent's, keeping the newest version per name (item 2 of
// SPEC_FULL.md: parent-suite inheritance).
func MergeSourceIndex(parent, child map[string]SourcePackage, cmp versionCompare) map[string]SourcePackage {
	merged := make([]SourcePackage, 0, len(parent)+len(child))
	for _, p := range parent {
		merged = append(merged, p)
	}
	for _, p := range child {
		merged = append(merged, p)
	}
	// child entries are appended after parent entries, so on an exact
	// version tie the parent's entry (encountered first) wins, matching
	// the tie-breaking rule applied everywhere else in this package.
	return NewestMap(merged, cmp)
}
