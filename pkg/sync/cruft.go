package sync

import (
	"context"
	"log/slog"
	"strings"

	"github.com/archsync/syncengine/pkg/version"
)

// detectCruft implements SPEC_FULL.md item 4: after an autosync pass,
// find target packages that are absent from every source component and
// classify them. Called only when EngineConfig.RemoveCruft is set.
func (e *Engine) detectCruft(ctx context.Context) ([]Issue, error) {
	targetVersions := map[string]string{}

	for _, component := range e.cfg.TargetSuite.Components {
		idx, err := e.sourceIndex(ctx, e.targetRepo, e.cfg.TargetSuite.Name, component)
		if err != nil {
			return nil, err
		}
		for name, pkg := range idx {
			targetVersions[name] = pkg.Version
		}
	}

	for _, component := range e.cfg.TargetSuite.Components {
		idx, err := e.sourceIndex(ctx, e.sourceRepo, e.cfg.SourceSuiteName, component)
		if err != nil {
			return nil, err
		}
		for name := range idx {
			delete(targetVersions, name)
		}
	}

	var issues []Issue
	for name, pkgVersion := range targetVersions {
		revision := version.DebianRevision(pkgVersion)
		if revision == "" {
			// native package, never removed
			continue
		}
		if strings.HasPrefix(revision, "0"+e.cfg.DistroTag) {
			// introduced new in this distro, never removed
			continue
		}
		if strings.Contains(revision, e.cfg.DistroTag) {
			issues = append(issues, Issue{
				Kind:          IssueMaybeCruft,
				PackageName:   name,
				TargetVersion: pkgVersion,
				TargetSuite:   e.cfg.TargetSuite.Name,
			})
			continue
		}

		if err := e.dak.RemoveFiles(ctx, e.cfg.TargetSuite.Name, name); err != nil {
			slog.Warn("failed to remove cruft package",
				slog.String("package", name), slog.String("error", err.Error()))
			issues = append(issues, Issue{
				Kind:          IssueRemovalFailed,
				PackageName:   name,
				TargetVersion: pkgVersion,
				TargetSuite:   e.cfg.TargetSuite.Name,
				Details:       err.Error(),
			})
		}
	}

	return issues, nil
}
