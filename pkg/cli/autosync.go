package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var autosyncCmd = &cobra.Command{
	Use:   "autosync",
	Short: "sync every eligible package across every configured component and architecture",
	Args:  cobra.NoArgs,
	RunE:  runAutosync,
}

func runAutosync(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString(flagConfig)

	engine, _, err := buildEngine(configPath)
	if err != nil {
		return err
	}

	ok, issues, err := engine.Autosync(cmd.Context())
	if err != nil {
		return fmt.Errorf("autosync: %w", err)
	}

	for _, issue := range issues {
		slog.WarnContext(cmd.Context(), "autosync issue",
			slog.String("kind", issue.Kind.String()),
			slog.String("package", issue.PackageName),
			slog.String("detail", issue.Details),
		)
	}

	slog.InfoContext(cmd.Context(), "autosync finished", slog.Bool("success", ok), slog.Int("issues", len(issues)))
	if !ok {
		return fmt.Errorf("autosync completed with errors, see log")
	}
	return nil
}
