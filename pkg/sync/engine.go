// Package sync implements the package synchronization engine: it
// selects which source and binary packages should move from a source
// archive to a target archive, fetches them, and drives their import
// through a Dak facade.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/archsync/syncengine/pkg/archive"
	"github.com/archsync/syncengine/pkg/dak"
	"github.com/archsync/syncengine/pkg/debian"
	"github.com/archsync/syncengine/pkg/version"
)

const defaultBinaryScanConcurrency = 4

// Engine orchestrates the selection -> fetch -> import pipeline for
// targeted (SyncPackages) and fleet-wide (Autosync) synchronization
// (§4.5). It is constructed per run, holds no persistent mutable state
// beyond its configuration, and is discarded afterward.
type Engine struct {
	cfg EngineConfig

	sourceRepo archive.Repository
	targetRepo archive.Repository
	dak        dak.Dak

	events      EventSink
	concurrency int
}

// NewEngine builds an Engine. sourceRepo and targetRepo may be the same
// implementation pointed at different locations, or different
// implementations entirely; the engine only depends on the
// archive.Repository interface.
func NewEngine(cfg EngineConfig, sourceRepo, targetRepo archive.Repository, d dak.Dak) *Engine {
	return &Engine{
		cfg:         cfg,
		sourceRepo:  sourceRepo,
		targetRepo:  targetRepo,
		dak:         d,
		concurrency: defaultBinaryScanConcurrency,
	}
}

// WithEventSink attaches an EventSink and returns the Engine for
// chaining.
func (e *Engine) WithEventSink(sink EventSink) *Engine {
	e.events = sink
	return e
}

// WithConcurrency overrides the bounded parallelism used to scan a
// source package's binaries (§5, §9). Values <= 0 are ignored.
func (e *Engine) WithConcurrency(n int) *Engine {
	if n > 0 {
		e.concurrency = n
	}
	return e
}

// SyncPackages imports the named packages from component, plus their
// binaries, from the source archive into the target archive (§4.5).
//
// force bypasses the target-version-greater check but never the
// modified-fork check: targeted sync never evaluates the fork check at
// all, by design (§9 open question).
func (e *Engine) SyncPackages(ctx context.Context, component archive.Component, names []string, force bool) (bool, error) {
	if len(names) == 0 {
		return false, ErrEmptyNames
	}
	if !e.cfg.SyncEnabled {
		return false, &SyncDisabledError{}
	}

	logState(ctx, component, stateIndexingSources)
	srcIdx, err := e.sourceIndex(ctx, e.sourceRepo, e.cfg.SourceSuiteName, component)
	if err != nil {
		logState(ctx, component, stateFailed)
		return false, err
	}
	dstIdx, err := e.targetSourceIndex(ctx, component)
	if err != nil {
		logState(ctx, component, stateFailed)
		return false, err
	}

	var synced []archive.SourcePackage
	for _, name := range names {
		if e.cfg.Blacklisted(name) {
			slog.Info("cannot sync package: blacklisted", slog.String("package", name))
			continue
		}

		spkg, ok := srcIdx[name]
		if !ok {
			slog.Info("cannot sync package: does not exist in source",
				slog.String("package", name), slog.String("component", string(component)))
			continue
		}

		if dpkg, ok := dstIdx[name]; ok {
			cmp, cmpErr := version.Compare(dpkg.Version, spkg.Version)
			if cmpErr != nil {
				slog.Warn("skipping package: cannot compare versions",
					slog.String("package", name), slog.String("error", cmpErr.Error()))
				continue
			}
			if cmp >= 0 {
				if force {
					slog.Warn("target version is newer/equal than source version, forcing sync anyway",
						slog.String("package", name),
						slog.String("target_version", dpkg.Version),
						slog.String("source_version", spkg.Version))
				} else {
					slog.Info("cannot sync package: target version is newer/equal than source version",
						slog.String("package", name),
						slog.String("target_version", dpkg.Version),
						slog.String("source_version", spkg.Version))
					continue
				}
			}
		}

		logState(ctx, component, stateImporting)
		ok, err := e.importSourcePackage(ctx, spkg, component)
		if err != nil {
			logState(ctx, component, stateFailed)
			return false, err
		}
		if !ok {
			logState(ctx, component, stateFailed)
			return false, nil
		}

		synced = append(synced, spkg)
		e.notifySynced(spkg, force)
	}

	logState(ctx, component, stateIndexingBinaries)
	ok, err := e.importBinariesForSources(ctx, component, synced)
	if err != nil {
		logState(ctx, component, stateFailed)
		return false, err
	}
	if ok {
		logState(ctx, component, stateDone)
	} else {
		logState(ctx, component, stateFailed)
	}
	return ok, nil
}

// Autosync synchronizes every source package that is newer across all
// of the target suite's components (§4.5). The returned issues are a
// read-only report (SPEC_FULL.md item 4); RemoveCruft must be set for
// the engine to actually remove anything via Dak.
func (e *Engine) Autosync(ctx context.Context) (bool, []Issue, error) {
	if !e.cfg.SyncEnabled {
		return false, nil, &SyncDisabledError{}
	}

	var issues []Issue

	for _, component := range e.cfg.TargetSuite.Components {
		logState(ctx, component, stateIndexingSources)
		dstIdx, err := e.targetSourceIndex(ctx, component)
		if err != nil {
			return false, issues, err
		}
		srcIdx, err := e.sourceIndex(ctx, e.sourceRepo, e.cfg.SourceSuiteName, component)
		if err != nil {
			return false, issues, err
		}

		// Iteration order over the index is unspecified; map iteration is
		// sufficient (invariant: correctness must not depend on order).
		var synced []archive.SourcePackage
		for _, spkg := range srcIdx {
			if e.cfg.Blacklisted(spkg.Name) {
				continue
			}

			if dpkg, ok := dstIdx[spkg.Name]; ok {
				cmp, cmpErr := version.Compare(dpkg.Version, spkg.Version)
				if cmpErr != nil {
					slog.Warn("skipping package: cannot compare versions",
						slog.String("package", spkg.Name), slog.String("error", cmpErr.Error()))
					continue
				}
				if cmp >= 0 {
					slog.Debug("skipped sync: target version is newer/equal than source version",
						slog.String("package", spkg.Name),
						slog.String("target_version", dpkg.Version),
						slog.String("source_version", spkg.Version))
					continue
				}

				if strings.Contains(version.DebianRevision(dpkg.Version), e.cfg.DistroTag) {
					slog.Info("not syncing package: destination has modifications",
						slog.String("package", spkg.Name),
						slog.String("target_version", dpkg.Version),
						slog.String("source_version", spkg.Version))
					issues = append(issues, Issue{
						Kind:          IssueMergeRequired,
						PackageName:   spkg.Name,
						SourceVersion: spkg.Version,
						TargetVersion: dpkg.Version,
						SourceSuite:   e.cfg.SourceSuiteName,
						TargetSuite:   e.cfg.TargetSuite.Name,
					})
					continue
				}
			}

			logState(ctx, component, stateImporting)
			ok, err := e.importSourcePackage(ctx, spkg, component)
			if err != nil {
				return false, issues, err
			}
			if !ok {
				return false, issues, nil
			}

			synced = append(synced, spkg)
			e.notifySynced(spkg, false)
		}

		logState(ctx, component, stateIndexingBinaries)
		ok, err := e.importBinariesForSources(ctx, component, synced)
		if err != nil {
			return false, issues, err
		}
		if !ok {
			return false, issues, nil
		}
	}

	if e.cfg.RemoveCruft {
		cruftIssues, err := e.detectCruft(ctx)
		if err != nil {
			return false, issues, err
		}
		issues = append(issues, cruftIssues...)
	}

	logState(ctx, "", stateDone)
	return true, issues, nil
}

func (e *Engine) notifySynced(spkg archive.SourcePackage, forced bool) {
	if e.events == nil {
		return
	}
	e.events.OnSourcePackageSynced(spkg.Name, spkg.Version, e.cfg.SourceSuiteName, e.cfg.TargetSuite.Name, forced)
}

func logState(ctx context.Context, component archive.Component, state batchState) {
	slog.DebugContext(ctx, "sync batch state",
		slog.String("component", string(component)),
		slog.String("state", state.String()),
	)
}

// sourceIndex builds name -> newest SourcePackage from repo.
func (e *Engine) sourceIndex(ctx context.Context, repo archive.Repository, suite archive.SuiteName, component archive.Component) (map[string]archive.SourcePackage, error) {
	pkgs, err := repo.SourcePackages(ctx, suite, component)
	if err != nil {
		return nil, &archive.RepositoryError{Repo: repo.BaseLocation(), Op: "source_packages", Err: err}
	}
	return archive.NewestMap(pkgs, version.Compare), nil
}

// targetSourceIndex builds the target's source-package map, merging in
// its parent suite's map if one is configured (SPEC_FULL.md item 2).
func (e *Engine) targetSourceIndex(ctx context.Context, component archive.Component) (map[string]archive.SourcePackage, error) {
	idx, err := e.sourceIndex(ctx, e.targetRepo, e.cfg.TargetSuite.Name, component)
	if err != nil {
		return nil, err
	}
	if e.cfg.TargetSuite.Parent == nil {
		return idx, nil
	}

	parentIdx, err := e.sourceIndex(ctx, e.targetRepo, e.cfg.TargetSuite.Parent.Name, component)
	if err != nil {
		return nil, err
	}
	return archive.MergeSourceIndex(parentIdx, idx, version.Compare), nil
}

// binaryIndex builds name -> newest BinaryPackage from repo, merging in
// installer packages per §4.2.
func (e *Engine) binaryIndex(ctx context.Context, repo archive.Repository, suite archive.SuiteName, component archive.Component, arch archive.Architecture) (map[string]archive.BinaryPackage, error) {
	regular, err := repo.BinaryPackages(ctx, suite, component, arch)
	if err != nil {
		return nil, &archive.RepositoryError{Repo: repo.BaseLocation(), Op: "binary_packages", Err: err}
	}
	installer, err := repo.InstallerPackages(ctx, suite, component, arch)
	if err != nil {
		return nil, &archive.RepositoryError{Repo: repo.BaseLocation(), Op: "installer_packages", Err: err}
	}
	return archive.NewBinaryIndex(regular, installer, true, version.Compare), nil
}

// importSourcePackage implements §4.6.
func (e *Engine) importSourcePackage(ctx context.Context, spkg archive.SourcePackage, component archive.Component) (bool, error) {
	dscFile, hasDSC := spkg.DSCFile()

	var dscPath string
	for _, f := range spkg.Files {
		path, err := e.sourceRepo.Materialize(ctx, f)
		if err != nil {
			return false, &archive.RepositoryError{Repo: e.sourceRepo.BaseLocation(), Op: "materialize", Err: err}
		}
		if hasDSC && f.Filename == dscFile.Filename {
			dscPath = path
		}
	}

	if dscPath == "" {
		slog.Error("critical consistency error: source package has no .dsc file",
			slog.String("package", spkg.Name),
			slog.String("repo", e.sourceRepo.BaseLocation()),
		)
		return false, &ConsistencyError{
			Package: spkg.Name,
			Detail:  "no .dsc file found in " + e.sourceRepo.BaseLocation(),
		}
	}

	ok, err := e.dak.ImportFiles(ctx, e.cfg.TargetSuite.Name, component, []string{dscPath}, e.cfg.ImportsTrusted, true)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// importBinariesForSources implements §4.7.
func (e *Engine) importBinariesForSources(ctx context.Context, component archive.Component, spkgs []archive.SourcePackage) (bool, error) {
	if !e.cfg.SyncBinaries {
		slog.Debug("skipping binary syncs", slog.String("component", string(component)))
		return true, nil
	}

	archs := e.cfg.TargetSuite.BinaryArchitectures()

	srcByArch := make(map[archive.Architecture]map[string]archive.BinaryPackage, len(archs))
	dstByArch := make(map[archive.Architecture]map[string]archive.BinaryPackage, len(archs))
	for _, a := range archs {
		srcIdx, err := e.binaryIndex(ctx, e.sourceRepo, e.cfg.SourceSuiteName, component, a)
		if err != nil {
			return false, err
		}
		srcByArch[a] = srcIdx

		dstIdx, err := e.binaryIndex(ctx, e.targetRepo, e.cfg.TargetSuite.Name, component, a)
		if err != nil {
			return false, err
		}
		dstByArch[a] = dstIdx
	}

	for _, spkg := range spkgs {
		anySynced := false
		anyExisting := false

		for _, a := range archs {
			srcIdx, ok := srcByArch[a]
			if !ok {
				// Architecture absent from source index: contributes nothing,
				// must not fail (§8 boundary case).
				continue
			}
			dstIdx := dstByArch[a]

			binFiles, existing, err := e.scanSourcePackageBinaries(ctx, spkg, srcIdx, dstIdx)
			if err != nil {
				return false, err
			}
			if existing {
				anyExisting = true
			}
			if len(binFiles) == 0 {
				continue
			}
			anySynced = true

			logState(ctx, component, stateImporting)
			ok2, err := e.dak.ImportFiles(ctx, e.cfg.TargetSuite.Name, component, binFiles, e.cfg.ImportsTrusted, true)
			if err != nil {
				return false, err
			}
			if !ok2 {
				return false, nil
			}
		}

		if !anySynced && !anyExisting {
			slog.Warn("unable to sync any binary for source package",
				slog.String("package", spkg.Name), slog.String("version", spkg.Version))
		}
	}

	return true, nil
}

// scanSourcePackageBinaries scans spkg's declared binaries concurrently
// (bounded by e.concurrency), per §5 and §9: a short critical section
// protects the accumulator, and on error in-flight materializations are
// allowed to finish before the error is returned.
func (e *Engine) scanSourcePackageBinaries(ctx context.Context, spkg archive.SourcePackage, srcIdx, dstIdx map[string]archive.BinaryPackage) ([]string, bool, error) {
	var (
		mu            sync.Mutex
		wg            sync.WaitGroup
		binFiles      []string
		existingFound bool
		firstErr      error
	)

	sem := make(chan struct{}, e.concurrency)

	for _, expect := range spkg.Binaries {
		expect := expect

		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			path, existing, err := e.scanOneBinary(ctx, spkg, expect, srcIdx, dstIdx)

			mu.Lock()
			defer mu.Unlock()
			if existing {
				existingFound = true
			}
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if path != "" {
				binFiles = append(binFiles, path)
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return nil, existingFound, firstErr
	}
	return binFiles, existingFound, nil
}

// scanOneBinary evaluates a single expected binary of spkg against the
// source and target binary indices for one architecture, returning the
// materialized local path (empty if nothing should be imported) and
// whether it was skipped because the target already has a binary with
// this name (equal/newer, or a rebuild upload). A target binary that is
// older and gets replaced is not reported.
func (e *Engine) scanOneBinary(ctx context.Context, spkg archive.SourcePackage, expect archive.BinaryExpectation, srcIdx, dstIdx map[string]archive.BinaryPackage) (string, bool, error) {
	binPkg, ok := srcIdx[expect.Name]
	if !ok {
		return "", false, nil
	}

	if !binPkg.BelongsTo(spkg) {
		slog.Warn("binary disowns its source package",
			slog.String("binary", binPkg.Name),
			slog.String("binary_source", binPkg.SourceName),
			slog.String("binary_source_version", binPkg.SourceVersion),
			slog.String("expected_source", spkg.Name),
			slog.String("expected_source_version", spkg.Version),
		)
		return "", false, nil
	}

	if binPkg.SourceVersion != expect.Version {
		slog.Info("not syncing binary package: version mismatch between source manifest and binary index",
			slog.String("binary", binPkg.Name),
			slog.String("manifest_version", expect.Version),
			slog.String("index_source_version", binPkg.SourceVersion),
		)
		return "", false, nil
	}

	if existing, ok := dstIdx[binPkg.Name]; ok {
		cmp, err := version.Compare(existing.Version, binPkg.Version)
		if err != nil {
			slog.Warn("skipping binary: cannot compare versions",
				slog.String("binary", binPkg.Name), slog.String("error", err.Error()))
			return "", false, nil
		}
		if cmp >= 0 {
			slog.Info("not syncing binary package: existing binary with equal/newer version found",
				slog.String("binary", binPkg.Name),
				slog.String("existing_version", existing.Version),
				slog.String("candidate_version", binPkg.Version),
			)
			return "", true, nil
		}

		// Filter out manual rebuild uploads: when the source package's
		// version is at least the existing target binary's version
		// (spkg.Version >= existing version) and that binary looks like a
		// rebuild-only upload, don't let a binNMU in the source distro
		// clobber it.
		cmpSpkg, spkgCmpErr := version.Compare(spkg.Version, existing.Version)
		if spkgCmpErr == nil && cmpSpkg >= 0 && version.LooksLikeRebuildUpload(existing.Version) {
			slog.Debug("not syncing binary package: existing binary looks like a rebuild upload",
				slog.String("binary", binPkg.Name), slog.String("existing_version", existing.Version))
			return "", true, nil
		}
	}

	path, err := e.sourceRepo.Materialize(ctx, binPkg.File)
	if err != nil {
		return "", false, &archive.RepositoryError{Repo: e.sourceRepo.BaseLocation(), Op: "materialize", Err: err}
	}

	if !e.cfg.ImportsTrusted {
		if err := verifyDebControl(path, binPkg.Name, binPkg.Version); err != nil {
			slog.Warn("not syncing binary package: control stanza does not match index",
				slog.String("binary", binPkg.Name), slog.String("error", err.Error()))
			return "", false, nil
		}
	}

	return path, false, nil
}

// verifyDebControl opens a materialized .deb and checks that its own
// control stanza agrees with what the binary index claimed about it.
// Only run for untrusted sources (§4.7): a compromised or stale mirror
// can serve a Packages index that disagrees with the .deb it links to.
func verifyDebControl(path, name, pkgVersion string) error {
	para, err := debian.ParagraphFromDebFile(path)
	if err != nil {
		return fmt.Errorf("reading control member: %w", err)
	}
	if para == nil {
		return errors.New("no control paragraph found")
	}
	if got := (*para)["Package"]; got != name {
		return fmt.Errorf("control Package %q does not match index name %q", got, name)
	}
	if got := (*para)["Version"]; got != pkgVersion {
		return fmt.Errorf("control Version %q does not match index version %q", got, pkgVersion)
	}
	return nil
}
