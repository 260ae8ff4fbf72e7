package sync

import "github.com/archsync/syncengine/pkg/archive"

// EngineConfig is immutable for the lifetime of one Engine (§3).
type EngineConfig struct {
	// TargetSuite is the destination suite: its name, components, and
	// architectures drive every loop in the engine.
	TargetSuite archive.Suite

	// SourceSuiteName is the suite name requested from the source
	// repository facade.
	SourceSuiteName archive.SuiteName

	// DistroTag identifies local fork revisions, e.g. "tanglu". A target
	// package whose Debian revision contains this substring is
	// considered locally modified.
	DistroTag string

	// SyncEnabled gates both SyncPackages and Autosync.
	SyncEnabled bool

	// SyncBinaries, when false, means binaries are never copied.
	SyncBinaries bool

	// ImportsTrusted is passed through to Dak on every import. When
	// false, the engine also re-opens each candidate binary's .deb and
	// checks its own control stanza against the binary index before
	// importing it, rather than trusting the index unconditionally.
	ImportsTrusted bool

	// Blacklist names packages that are never synced, in either mode
	// (SPEC_FULL.md item 1).
	Blacklist map[string]struct{}

	// RemoveCruft opts into removing, via Dak, target packages that are
	// absent from every source component and not locally modified
	// (SPEC_FULL.md item 4). Off by default.
	RemoveCruft bool
}

// Blacklisted reports whether name is configured to never be synced.
func (c EngineConfig) Blacklisted(name string) bool {
	_, ok := c.Blacklist[name]
	return ok
}
