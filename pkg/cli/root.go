// Package cli wires syncengine's cobra commands to pkg/config and
// pkg/sync.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

const flagConfig = "config"
const flagVerbose = "verbose"

var rootCmd = &cobra.Command{
	Use:          "syncengine",
	Short:        "sync packages between Debian-derivative archives",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool(flagVerbose)
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringP(flagConfig, "c", "syncengine.yml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP(flagVerbose, "v", false, "enable debug logging")
	rootCmd.AddCommand(syncCmd, autosyncCmd)
}

// Execute runs the root command, reading os.Args. It cancels the
// command's context on SIGINT so a sync in flight can unwind cleanly.
func Execute(version string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
