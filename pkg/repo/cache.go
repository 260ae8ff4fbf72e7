package repo

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/archsync/syncengine/pkg/cache"
)

// Cache wraps a Repo with a cache.Storage, so repeated syncs against an
// unchanged upstream don't re-fetch index and pool files.
type Cache struct {
	src     Repo
	storage cache.Storage
}

var _ Repo = (*Cache)(nil)

const (
	releases = cache.Namespace("releases")
	packages = cache.Namespace("packages")
	sources  = cache.Namespace("sources")
	pool     = cache.Namespace("pool")
)

// CacheFromConfig builds a Cache around src from a pkg/cache config, and
// sets the namespace TTLs this package relies on: indices expire after
// a few hours so a sync eventually observes upstream changes. Pool
// files get no namespace TTL of their own and keep the storage's
// default TTL.
func CacheFromConfig(src Repo, cfg cache.Config) (*Cache, error) {
	storage, err := cache.StorageFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	storage.NamespaceTTL(releases, 4*time.Hour)
	storage.NamespaceTTL(packages, 4*time.Hour)
	storage.NamespaceTTL(sources, 4*time.Hour)

	return NewCache(src, storage), nil
}

func NewCache(src Repo, storage cache.Storage) *Cache {
	return &Cache{
		src:     src,
		storage: storage,
	}
}

func (c *Cache) InRelease(ctx context.Context, dist string) ([]byte, error) {
	key := releases.Key(dist)
	v, ok := c.storage.Get(ctx, key)
	slog.Debug("cached InRelease", slog.String("dist", dist), slog.Bool("cache_hit", ok))
	if ok {
		return v, nil
	}

	v, err := c.src.InRelease(ctx, dist)
	if err != nil {
		return nil, err
	}
	c.storage.Add(ctx, key, v)
	return v, nil
}

func (c *Cache) Packages(ctx context.Context, dist, component, arch string, installer bool, compression Compression) ([]byte, error) {
	key := packages.Key(dist, component, arch, strconv.FormatBool(installer), compression.String())
	v, ok := c.storage.Get(ctx, key)
	slog.Debug("cached Packages",
		slog.String("dist", dist), slog.String("component", component), slog.String("arch", arch),
		slog.Bool("installer", installer), slog.Bool("cache_hit", ok),
	)
	if ok {
		return v, nil
	}

	v, err := c.src.Packages(ctx, dist, component, arch, installer, compression)
	if err != nil {
		return nil, err
	}
	c.storage.Add(ctx, key, v)
	return v, nil
}

func (c *Cache) Sources(ctx context.Context, dist, component string, compression Compression) ([]byte, error) {
	key := sources.Key(dist, component, compression.String())
	v, ok := c.storage.Get(ctx, key)
	slog.Debug("cached Sources",
		slog.String("dist", dist), slog.String("component", component),
		slog.Bool("cache_hit", ok),
	)
	if ok {
		return v, nil
	}

	v, err := c.src.Sources(ctx, dist, component, compression)
	if err != nil {
		return nil, err
	}
	c.storage.Add(ctx, key, v)
	return v, nil
}

func (c *Cache) Pool(ctx context.Context, component, pkg, filename string) ([]byte, error) {
	key := pool.Key(component, pkg, filename)
	v, ok := c.storage.Get(ctx, key)
	slog.Debug("cached Pool",
		slog.String("component", component), slog.String("pkg", pkg), slog.String("filename", filename),
		slog.Bool("cache_hit", ok),
	)
	if ok {
		return v, nil
	}

	v, err := c.src.Pool(ctx, component, pkg, filename)
	if err != nil {
		return nil, err
	}
	c.storage.Add(ctx, key, v)
	return v, nil
}
