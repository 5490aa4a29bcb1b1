package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/compiler"
	"github.com/mj1618/uiarec/internal/script"
	"github.com/mj1618/uiarec/internal/store"
	"github.com/mj1618/uiarec/internal/workspace"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the scenario into a pywinauto script",
	Long: `Compile the scenario (or the selected steps) into a standalone Python script.
Without --output the script is written to stdout.

Examples:
  uiarec build -o login.py
  uiarec build --debug --step 3f1c... -o step.py
  uiarec build -o login.py --watch`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringP("output", "o", "", "Write the script to this file")
	buildCmd.Flags().Bool("debug", false, "Instrument the script for fault correlation")
	buildCmd.Flags().Bool("watch", false, "Rebuild whenever the scenario file changes (requires --output)")
	addStepsFlag(buildCmd.Flags(), "Step id to include (repeatable; default all)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("output")
	debug, _ := cmd.Flags().GetBool("debug")
	watch, _ := cmd.Flags().GetBool("watch")
	steps, _ := cmd.Flags().GetStringSlice("step")
	if watch && out == "" {
		return fmt.Errorf("--watch requires --output")
	}

	opts := compiler.Options{StepIDs: steps}
	if debug {
		opts.Mode = script.ModeDebug
	}

	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer closeFn()

	if err := buildOnce(cmd, ws, opts, out); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	appLog.Info("watching scenario", slog.String("path", ws.Path()), slog.String("output", out))
	return store.Watch(ctx, ws.Path(), appLog, func() {
		ws.Invalidate()
		if err := buildOnce(cmd, ws, opts, out); err != nil {
			appLog.Error("rebuild failed", slog.String("error", err.Error()))
		}
	})
}

func buildOnce(cmd *cobra.Command, ws *workspace.Workspace, opts compiler.Options, out string) error {
	src, err := ws.Compile(opts)
	if err != nil {
		return err
	}
	if out == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), src)
		return err
	}
	if err := os.WriteFile(out, []byte(src), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	appLog.Info("script written", slog.String("path", out), slog.String("mode", opts.Mode.String()))
	return nil
}
