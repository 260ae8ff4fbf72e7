package dak

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/archsync/syncengine/pkg/archive"
)

// ShellDak implements Dak by shelling out to the real "dak" archive
// management tool.
type ShellDak struct {
	binary string
}

var _ Dak = (*ShellDak)(nil)

// NewShellDak builds a Dak that invokes binary (typically "dak", or an
// absolute path to it).
func NewShellDak(binary string) *ShellDak {
	if binary == "" {
		binary = "dak"
	}
	return &ShellDak{binary: binary}
}

// ErrRejected marks a dak run whose own process output indicates the
// import was rejected, as opposed to a process/transport failure.
// ImportFiles reports it as a false result with a nil error.
var ErrRejected = errors.New("dak rejected the import")

func (d *ShellDak) ImportFiles(ctx context.Context, suite archive.SuiteName, component archive.Component, localPaths []string, trusted, allowNew bool) (bool, error) {
	args := []string{"process-upload", "-s", string(suite), "-C", string(component)}
	if trusted {
		args = append(args, "--trusted")
	}
	if allowNew {
		args = append(args, "--allow-new")
	}
	args = append(args, localPaths...)

	slog.Debug("invoking dak import",
		slog.String("suite", string(suite)),
		slog.String("component", string(component)),
		slog.Int("files", len(localPaths)),
	)

	if err := d.run(ctx, args); err != nil {
		if errors.Is(err, ErrRejected) {
			return false, nil
		}
		return false, &ImportError{Suite: suite, Component: component, Err: err}
	}
	return true, nil
}

func (d *ShellDak) RemoveFiles(ctx context.Context, suite archive.SuiteName, pkgName string) error {
	args := []string{"rm", "-s", string(suite), pkgName}
	if err := d.run(ctx, args); err != nil {
		return &ImportError{Suite: suite, Err: err}
	}
	return nil
}

func (d *ShellDak) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, d.binary, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		combined := out.String()
		if strings.Contains(combined, "REJECT") {
			return fmt.Errorf("%w: %s", ErrRejected, combined)
		}
		return fmt.Errorf("%w: %s", err, combined)
	}
	return nil
}
