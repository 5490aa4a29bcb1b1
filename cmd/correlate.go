package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/output"
)

var correlateCmd = &cobra.Command{
	Use:   "correlate [STDERR_FILE]",
	Short: "Trace a script fault back to the scenario",
	Long: `Read the standard error of a script compiled with --debug (from a file or
stdin) and print the step, action and path record the fault names.

Examples:
  python login.py 2> err.txt; uiarec correlate err.txt
  python login.py 2>&1 >/dev/null | uiarec correlate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCorrelate,
}

func init() {
	rootCmd.AddCommand(correlateCmd)
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read stderr: %w", err)
	}

	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer closeFn()

	f, loc, corrErr := ws.Correlate(string(data))
	if err := output.Print(output.NewLocationResult(f, loc, corrErr)); err != nil {
		return err
	}
	return corrErr
}
