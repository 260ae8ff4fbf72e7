package sync

import "github.com/archsync/syncengine/pkg/archive"

// IssueKind classifies an Issue raised during Autosync.
type IssueKind int

const (
	// IssueMergeRequired marks a source package whose target version is
	// locally modified (its Debian revision carries the distro tag), so
	// autosync left it untouched and a human needs to merge it.
	IssueMergeRequired IssueKind = iota
	// IssueMaybeCruft marks a target-only package that is locally
	// modified and therefore not auto-removed, flagged for review.
	IssueMaybeCruft
	// IssueRemovalFailed marks a target-only, unmodified package that
	// Dak could not remove.
	IssueRemovalFailed
)

func (k IssueKind) String() string {
	switch k {
	case IssueMergeRequired:
		return "merge_required"
	case IssueMaybeCruft:
		return "maybe_cruft"
	case IssueRemovalFailed:
		return "removal_failed"
	default:
		return "unknown"
	}
}

// Issue is a non-fatal finding surfaced from an Autosync run
// (SPEC_FULL.md item 4). It never aborts the batch by itself.
type Issue struct {
	Kind          IssueKind
	PackageName   string
	SourceVersion string
	TargetVersion string
	SourceSuite   archive.SuiteName
	TargetSuite   archive.SuiteName
	Details       string
}
