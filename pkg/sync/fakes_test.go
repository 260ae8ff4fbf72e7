package sync_test

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/archsync/syncengine/pkg/archive"
)

// fakeRepository is an in-memory archive.Repository used across the
// engine tests, modeled after the shape of pkg/repo/cached_test.go's
// fake CacheStorage in the teacher.
type fakeRepository struct {
	name         string
	defaultSuite archive.SuiteName

	mu           sync.Mutex
	sources      map[archive.SuiteName]map[archive.Component][]archive.SourcePackage
	binaries     map[archive.Component]map[archive.Architecture][]archive.BinaryPackage
	installer    map[archive.Component]map[archive.Architecture][]archive.BinaryPackage
	failFiles    map[string]error  // filename -> materialize error
	content      map[string][]byte // filename -> real bytes to materialize to a temp file
	materialized []string
	tempDir      string
}

func newFakeRepository(name string) *fakeRepository {
	return &fakeRepository{
		name:         name,
		defaultSuite: testSource,
		sources:      map[archive.SuiteName]map[archive.Component][]archive.SourcePackage{},
		binaries:     map[archive.Component]map[archive.Architecture][]archive.BinaryPackage{},
		installer:    map[archive.Component]map[archive.Architecture][]archive.BinaryPackage{},
		failFiles:    map[string]error{},
		content:      map[string][]byte{},
	}
}

// withContent registers real bytes for a filename: Materialize writes
// them to a temp file and returns that path instead of a fake
// placeholder, for tests that need an on-disk artifact to inspect.
func (f *fakeRepository) withContent(filename string, data []byte) *fakeRepository {
	f.content[filename] = data
	return f
}

// addSourceIn registers pkgs under suite/component. Most tests only deal
// with a single suite per repo and go through addSource, a convenience
// wrapper that defaults the suite.
func (f *fakeRepository) addSourceIn(suite archive.SuiteName, component archive.Component, pkgs ...archive.SourcePackage) *fakeRepository {
	if f.sources[suite] == nil {
		f.sources[suite] = map[archive.Component][]archive.SourcePackage{}
	}
	f.sources[suite][component] = append(f.sources[suite][component], pkgs...)
	return f
}

// addSource is addSourceIn scoped to the repo's default suite:
// testSource as constructed, or the suite set by asSuite (testTarget
// for target repos, per the test package's conventions).
func (f *fakeRepository) addSource(component archive.Component, pkgs ...archive.SourcePackage) *fakeRepository {
	return f.addSourceIn(f.defaultSuite, component, pkgs...)
}

func (f *fakeRepository) addBinary(component archive.Component, arch archive.Architecture, pkgs ...archive.BinaryPackage) *fakeRepository {
	if f.binaries[component] == nil {
		f.binaries[component] = map[archive.Architecture][]archive.BinaryPackage{}
	}
	f.binaries[component][arch] = append(f.binaries[component][arch], pkgs...)
	return f
}

func (f *fakeRepository) failMaterialize(filename string, err error) *fakeRepository {
	f.failFiles[filename] = err
	return f
}

// asSuite overrides the suite that addSource populates by default; use
// it for a repository that plays the role of the target archive, whose
// fixtures should live under testTarget rather than testSource.
func (f *fakeRepository) asSuite(suite archive.SuiteName) *fakeRepository {
	f.defaultSuite = suite
	return f
}

func (f *fakeRepository) SourcePackages(_ context.Context, suite archive.SuiteName, component archive.Component) ([]archive.SourcePackage, error) {
	return f.sources[suite][component], nil
}

func (f *fakeRepository) BinaryPackages(_ context.Context, _ archive.SuiteName, component archive.Component, arch archive.Architecture) ([]archive.BinaryPackage, error) {
	return f.binaries[component][arch], nil
}

func (f *fakeRepository) InstallerPackages(_ context.Context, _ archive.SuiteName, component archive.Component, arch archive.Architecture) ([]archive.BinaryPackage, error) {
	return f.installer[component][arch], nil
}

func (f *fakeRepository) Materialize(_ context.Context, file archive.FileRef) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failFiles[file.Filename]; ok {
		return "", err
	}
	f.materialized = append(f.materialized, file.Filename)

	if data, ok := f.content[file.Filename]; ok {
		if f.tempDir == "" {
			dir, err := os.MkdirTemp("", "syncengine-fake-repo")
			if err != nil {
				return "", err
			}
			f.tempDir = dir
		}
		path := f.tempDir + "/" + file.Filename
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", err
		}
		return path, nil
	}

	return "/fake/" + f.name + "/" + file.Filename, nil
}

func (f *fakeRepository) BaseLocation() string {
	return f.name
}

// fakeDak is an in-memory dak.Dak that records every import call and
// can be configured to reject or error on specific calls.
type fakeDak struct {
	mu      sync.Mutex
	imports [][]string
	reject  map[string]bool // filename -> reject this import batch
	errs    map[string]error
	removed []string
}

func newFakeDak() *fakeDak {
	return &fakeDak{
		reject: map[string]bool{},
		errs:   map[string]error{},
	}
}

func (d *fakeDak) rejectContaining(name string) *fakeDak {
	d.reject[name] = true
	return d
}

func (d *fakeDak) errorContaining(name string, err error) *fakeDak {
	d.errs[name] = err
	return d
}

func (d *fakeDak) ImportFiles(_ context.Context, _ archive.SuiteName, _ archive.Component, localPaths []string, _ bool, _ bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range localPaths {
		for needle, err := range d.errs {
			if strings.Contains(p, needle) {
				return false, err
			}
		}
	}
	for _, p := range localPaths {
		for needle := range d.reject {
			if strings.Contains(p, needle) {
				return false, nil
			}
		}
	}

	d.imports = append(d.imports, append([]string{}, localPaths...))
	return true, nil
}

func (d *fakeDak) RemoveFiles(_ context.Context, _ archive.SuiteName, pkgName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removed = append(d.removed, pkgName)
	return nil
}

func (d *fakeDak) importCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.imports)
}
