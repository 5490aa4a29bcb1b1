package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scenario's steps and actions",
	Long:  "Print every step followed by its actions in file order, with the ids other commands take.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer closeFn()

	sc, err := ws.Scenario()
	if err != nil {
		return err
	}
	return output.Print(output.NewScenarioResult(ws.Path(), sc))
}
