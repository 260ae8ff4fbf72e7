// Package config loads the YAML configuration for syncengine and
// builds the Repository/Dak facades and sync.EngineConfig from it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/archsync/syncengine/pkg/archive"
	"github.com/archsync/syncengine/pkg/cache"
	"github.com/archsync/syncengine/pkg/dak"
	"github.com/archsync/syncengine/pkg/repo"
	"github.com/archsync/syncengine/pkg/sync"
)

// Config is the on-disk shape of syncengine.yml.
type Config struct {
	Suites map[string]SuiteConfig `yaml:"suites"`

	// Target names the suite (within Suites) to sync into.
	Target string `yaml:"target"`
	// Source names the suite requested from the source repository; it
	// need not appear in Suites, since only the target suite's shape
	// (components, architectures, parent) is needed locally.
	Source string `yaml:"source"`

	DistroTag      string   `yaml:"distro_tag"`
	SyncEnabled    bool     `yaml:"sync_enabled"`
	SyncBinaries   bool     `yaml:"sync_binaries"`
	ImportsTrusted bool     `yaml:"imports_trusted"`
	RemoveCruft    bool     `yaml:"remove_cruft"`
	Blacklist      []string `yaml:"blacklist"`

	SourceRepo RepoConfig `yaml:"source_repo"`
	TargetRepo RepoConfig `yaml:"target_repo"`
	Dak        DakConfig  `yaml:"dak"`
}

// SuiteConfig describes one named suite's shape.
type SuiteConfig struct {
	Components    []string `yaml:"components"`
	Architectures []string `yaml:"architectures"`
	Parent        string   `yaml:"parent"`
}

// RepoConfig configures one archive.Repository.
type RepoConfig struct {
	Upstream    repo.UpstreamConfig `yaml:"upstream"`
	Cache       cache.Config        `yaml:"cache"`
	DownloadDir string              `yaml:"download_dir"`
}

// DakConfig configures the Dak facade.
type DakConfig struct {
	Binary string `yaml:"binary"`
}

// Load reads path, applying defaults to an absent or partial file the
// way the teacher's own server config does.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decoding config: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("opening config: %w", err)
	} else {
		slog.Info("no config file found, using defaults", slog.String("path", path))
	}

	if cfg.Target == "" {
		cfg.Target = "unstable"
	}
	if cfg.Source == "" {
		cfg.Source = cfg.Target
	}
	if cfg.SourceRepo.DownloadDir == "" {
		cfg.SourceRepo.DownloadDir = "./downloads/source"
	}
	if cfg.Dak.Binary == "" {
		cfg.Dak.Binary = "dak"
	}

	return &cfg, nil
}

// BuildRepository builds an archive.Repository from a RepoConfig: an
// Upstream, optionally wrapped in a byte cache, wrapped in an
// ArchiveRepository that decodes the Debian index formats.
func BuildRepository(name string, cfg RepoConfig) (archive.Repository, error) {
	slog.Debug("building repository", slog.String("repo", name))

	base, err := repo.UpstreamFromConfig(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("building %s repository: %w", name, err)
	}

	var src repo.Repo = base
	if cfg.Cache.URL != "" {
		src, err = repo.CacheFromConfig(base, cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("building %s repository cache: %w", name, err)
		}
	}

	return repo.NewArchiveRepository(src, name, cfg.DownloadDir), nil
}

// BuildDak builds the Dak facade.
func BuildDak(cfg DakConfig) dak.Dak {
	return dak.NewShellDak(cfg.Binary)
}

// BuildEngineConfig resolves cfg's suite graph and settings into a
// sync.EngineConfig.
func BuildEngineConfig(cfg Config) (sync.EngineConfig, error) {
	target, err := buildSuite(cfg, cfg.Target, 0)
	if err != nil {
		return sync.EngineConfig{}, err
	}

	blacklist := make(map[string]struct{}, len(cfg.Blacklist))
	for _, name := range cfg.Blacklist {
		blacklist[name] = struct{}{}
	}

	return sync.EngineConfig{
		TargetSuite:     target,
		SourceSuiteName: archive.SuiteName(cfg.Source),
		DistroTag:       cfg.DistroTag,
		SyncEnabled:     cfg.SyncEnabled,
		SyncBinaries:    cfg.SyncBinaries,
		ImportsTrusted:  cfg.ImportsTrusted,
		Blacklist:       blacklist,
		RemoveCruft:     cfg.RemoveCruft,
	}, nil
}

// buildSuite resolves name's parent chain, failing on a cycle.
func buildSuite(cfg Config, name string, depth int) (archive.Suite, error) {
	const maxDepth = 8
	if depth > maxDepth {
		return archive.Suite{}, fmt.Errorf("suite %q: parent chain too deep (cycle?)", name)
	}

	sc, ok := cfg.Suites[name]
	if !ok {
		return archive.Suite{}, fmt.Errorf("suite %q not configured", name)
	}

	suite := archive.Suite{
		Name:          archive.SuiteName(name),
		Components:    toComponents(sc.Components),
		Architectures: toArchitectures(sc.Architectures),
	}

	if sc.Parent != "" {
		parent, err := buildSuite(cfg, sc.Parent, depth+1)
		if err != nil {
			return archive.Suite{}, err
		}
		suite.Parent = &parent
	}
	return suite, nil
}

func toComponents(names []string) []archive.Component {
	out := make([]archive.Component, len(names))
	for i, n := range names {
		out[i] = archive.Component(n)
	}
	return out
}

func toArchitectures(names []string) []archive.Architecture {
	out := make([]archive.Architecture, len(names))
	for i, n := range names {
		out[i] = archive.Architecture(n)
	}
	return out
}
