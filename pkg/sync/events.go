package sync

import "github.com/archsync/syncengine/pkg/archive"

// EventSink is notified after each source package is successfully
// synced. It models the original implementation's message-stream
// event publication (SPEC_FULL.md item 5); Engine calls it only when
// non-nil, so wiring one up is strictly additive.
type EventSink interface {
	OnSourcePackageSynced(name, version string, sourceSuite, targetSuite archive.SuiteName, forced bool)
}
