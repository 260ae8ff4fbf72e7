package archive

import (
	"context"
	"fmt"
)

// Repository is the facade the engine consumes to enumerate and fetch
// packages from an archive, local or remote (§4.3). Implementations
// live outside this package; the engine only depends on this
// interface.
type Repository interface {
	SourcePackages(ctx context.Context, suite SuiteName, component Component) ([]SourcePackage, error)
	BinaryPackages(ctx context.Context, suite SuiteName, component Component, arch Architecture) ([]BinaryPackage, error)
	InstallerPackages(ctx context.Context, suite SuiteName, component Component, arch Architecture) ([]BinaryPackage, error)

	// Materialize ensures file is present on local disk and returns its
	// path. It is idempotent and safe to call concurrently for distinct
	// FileRefs.
	Materialize(ctx context.Context, file FileRef) (string, error)

	// BaseLocation is a human-readable identifier for diagnostics.
	BaseLocation() string
}

// RepositoryError wraps a failure reading or fetching from a
// Repository. It is fatal for the current batch (§7).
type RepositoryError struct {
	Repo string
	Op   string
	Err  error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %q: %s: %s", e.Repo, e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
