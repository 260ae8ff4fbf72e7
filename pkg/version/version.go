// Package version implements Debian version ordering.
package version

import (
	"fmt"
	"regexp"
	"strings"

	debversion "github.com/knqyf263/go-deb-version"
)

// ParseError is returned when a version string cannot be parsed under
// Debian versioning rules.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed debian version %q: %s", e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Compare implements dpkg --compare-versions ordering: epoch, upstream
// version, then Debian revision, each compared by Debian's alphanumeric
// rule. It returns a negative number if a < b, zero if equal, and a
// positive number if a > b.
func Compare(a, b string) (int, error) {
	va, err := debversion.NewVersion(a)
	if err != nil {
		return 0, &ParseError{Raw: a, Err: err}
	}
	vb, err := debversion.NewVersion(b)
	if err != nil {
		return 0, &ParseError{Raw: b, Err: err}
	}

	switch {
	case va.GreaterThan(vb):
		return 1, nil
	case va.LessThan(vb):
		return -1, nil
	default:
		return 0, nil
	}
}

// DebianRevision returns the substring after the last "-" in version,
// or "" if version carries no Debian revision (a "native" package).
func DebianRevision(version string) string {
	i := strings.LastIndex(version, "-")
	if i < 0 {
		return ""
	}
	return version[i+1:]
}

var rebuildUploadPattern = regexp.MustCompile(`.*b[0-9]+`)

// LooksLikeRebuildUpload reports whether version looks like a manual
// binary rebuild upload (e.g. "1.0-1b2"), as opposed to a genuine new
// upload. Versions containing "deb" (e.g. Debian's own "deb10u1" style
// security revisions) are never treated as rebuilds.
func LooksLikeRebuildUpload(version string) bool {
	return rebuildUploadPattern.MatchString(version) && !strings.Contains(version, "deb")
}
