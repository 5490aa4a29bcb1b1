package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/history"
	"github.com/mj1618/uiarec/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs of the scenario",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Max runs to list (0 = all)")
	historyCmd.Flags().Bool("all", false, "List runs of every scenario")
	historyPruneCmd.Flags().Int("keep", 100, "Runs to keep")
}

func openHistory() (*history.DB, error) {
	if !appConfig.History.Enabled() {
		return nil, nil
	}
	return history.Open(appConfig.History.Path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	all, _ := cmd.Flags().GetBool("all")

	db, err := openHistory()
	if err != nil {
		return err
	}
	if db == nil {
		return output.Print([]history.Run{})
	}
	defer db.Close()

	scenario, _ := rootCmd.PersistentFlags().GetString("scenario")
	if all {
		scenario = ""
	}
	runs, err := db.List(scenario, limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []history.Run{}
	}
	for i := range runs {
		runs[i].Stderr = ""
	}
	return output.Print(runs)
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	keep, _ := cmd.Flags().GetInt("keep")
	db, err := openHistory()
	if err != nil || db == nil {
		return err
	}
	defer db.Close()

	n, err := db.Prune(keep)
	if err != nil {
		return err
	}
	return output.Print(map[string]int64{"deleted": n})
}
