package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/output"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Add, rename or remove scenario steps",
}

var stepAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Append an empty step",
	Args:  cobra.ExactArgs(1),
	RunE:  runStepAdd,
}

var stepRenameCmd = &cobra.Command{
	Use:   "rename STEP_ID NAME",
	Short: "Rename a step",
	Args:  cobra.ExactArgs(2),
	RunE:  runStepRename,
}

var stepRemoveCmd = &cobra.Command{
	Use:   "remove STEP_ID",
	Short: "Remove a step and its actions",
	Args:  cobra.ExactArgs(1),
	RunE:  runStepRemove,
}

func init() {
	rootCmd.AddCommand(stepCmd)
	stepCmd.AddCommand(stepAddCmd, stepRenameCmd, stepRemoveCmd)
}

type stepResult struct {
	ID   string `yaml:"id"   json:"id"`
	Name string `yaml:"name" json:"name"`
}

func runStepAdd(cmd *cobra.Command, args []string) error {
	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer closeFn()

	var res stepResult
	err = ws.Update(func(sc *model.Scenario) error {
		st := sc.AddStep(args[0])
		res = stepResult{ID: st.ID, Name: st.Name}
		return nil
	})
	if err != nil {
		return err
	}
	return output.Print(res)
}

func runStepRename(cmd *cobra.Command, args []string) error {
	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer closeFn()

	err = ws.Update(func(sc *model.Scenario) error {
		st, ok := sc.StepByID(args[0])
		if !ok {
			return fmt.Errorf("step %s: %w", args[0], model.ErrNotFound)
		}
		st.Name = args[1]
		return nil
	})
	if err != nil {
		return err
	}
	return output.Print(stepResult{ID: args[0], Name: args[1]})
}

func runStepRemove(cmd *cobra.Command, args []string) error {
	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer closeFn()

	return ws.Update(func(sc *model.Scenario) error {
		i, ok := sc.StepIndex(args[0])
		if !ok {
			return fmt.Errorf("step %s: %w", args[0], model.ErrNotFound)
		}
		return sc.RemoveStep(i)
	})
}
