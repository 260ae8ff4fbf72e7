package cache

import (
	"context"
	"time"
)

// Storage is a namespaced blob cache: pkg/repo uses it to cache fetched
// release/index/pool bytes so repeated syncs don't re-fetch unchanged
// files from the source archive.
type Storage interface {
	Get(ctx context.Context, key Key) ([]byte, bool)
	Add(ctx context.Context, key Key, value []byte)
	NamespaceTTL(namespace Namespace, ttl time.Duration)
}
