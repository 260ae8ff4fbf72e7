package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/archsync/syncengine/pkg/archive"
)

const flagComponent = "component"
const flagForce = "force"

var syncCmd = &cobra.Command{
	Use:   "sync [package...]",
	Short: "sync named source packages, and their binaries, from the source archive",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringP(flagComponent, "C", "main", "component to sync within")
	syncCmd.Flags().BoolP(flagForce, "f", false, "bypass the target-version-greater check")
}

func runSync(cmd *cobra.Command, names []string) error {
	configPath, _ := cmd.Flags().GetString(flagConfig)
	component, _ := cmd.Flags().GetString(flagComponent)
	force, _ := cmd.Flags().GetBool(flagForce)

	engine, _, err := buildEngine(configPath)
	if err != nil {
		return err
	}

	ok, err := engine.SyncPackages(cmd.Context(), archive.Component(component), names, force)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	slog.InfoContext(cmd.Context(), "sync finished", slog.Bool("success", ok), slog.Int("packages", len(names)))
	if !ok {
		return fmt.Errorf("sync completed with errors, see log")
	}
	return nil
}
