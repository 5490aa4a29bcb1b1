package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/history"
	"github.com/mj1618/uiarec/internal/output"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compile and run the scenario, tracing faults to the failed element",
	Long: `Compile the scenario (or the selected steps), run it with the configured
Python interpreter, and report the outcome. In debug mode a failed element
lookup is traced back to the step, action and path record that failed.

Examples:
  uiarec run
  uiarec run --step 3f1c... --plain
  uiarec run --show-output`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addModeFlags(runCmd.Flags())
	addStepsFlag(runCmd.Flags(), "Step id to run (repeatable; default all)")
	runCmd.Flags().Bool("show-output", false, "Include the script's stdout and stderr")
}

// runResult is the printed outcome of a run.
type runResult struct {
	history.Run `yaml:",inline"`
	Stdout      string                 `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	Location    *output.LocationResult `yaml:"fault,omitempty"  json:"fault,omitempty"`
}

func runRun(cmd *cobra.Command, args []string) error {
	steps, _ := cmd.Flags().GetStringSlice("step")
	showOutput, _ := cmd.Flags().GetBool("show-output")

	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{run: true})
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := ws.Run(ctx, steps, modeFlag(cmd.Flags()))
	if err != nil {
		return err
	}

	res := runResult{Run: out.Run}
	if !showOutput {
		res.Stderr = ""
	} else {
		res.Stdout = out.Result.Stdout
	}
	if f := out.Result.Fault; f != nil && f.Correlatable() {
		loc := output.NewLocationResult(*f, out.Result.Location, out.Result.CorrelationErr)
		res.Location = &loc
	}
	if err := output.Print(res); err != nil {
		return err
	}
	if !out.Result.OK() {
		return fmt.Errorf("run %s", out.Result.Summary())
	}
	return nil
}
