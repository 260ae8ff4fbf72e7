// Package dak defines the facade the engine consumes to register
// already-materialized files with the target archive's management
// tool (§4.4).
package dak

import (
	"context"
	"fmt"

	"github.com/archsync/syncengine/pkg/archive"
)

// Dak imports files into a (suite, component) of the target archive.
// ImportFiles returns (false, nil) on a rejection Dak itself reported,
// distinct from a transport/process error, which is returned as a
// non-nil error.
type Dak interface {
	ImportFiles(ctx context.Context, suite archive.SuiteName, component archive.Component, localPaths []string, trusted, allowNew bool) (bool, error)

	// RemoveFiles removes a package from suite, used only for opt-in
	// cruft removal during autosync (SPEC_FULL.md item 4). Additive to
	// the original single-operation facade.
	RemoveFiles(ctx context.Context, suite archive.SuiteName, pkgName string) error
}

// ImportError wraps a process/transport failure invoking Dak, as
// opposed to an ordinary rejection (which is reported via the bool
// return and handled as ImportRejected by the caller).
type ImportError struct {
	Suite     archive.SuiteName
	Component archive.Component
	Err       error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("dak import into %s/%s: %s", e.Suite, e.Component, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
