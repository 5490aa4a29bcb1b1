package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/output"
)

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Add or remove authored actions",
	Long: `Add sleeps and signal rendezvous to a step, or remove any action.
Clicks and key entry are captured with 'uiarec record'.`,
}

var actionSleepCmd = &cobra.Command{
	Use:   "sleep STEP_ID SECONDS",
	Short: "Add a pause",
	Args:  cobra.ExactArgs(2),
	RunE:  runActionSleep,
}

var actionSendCmd = &cobra.Command{
	Use:   "send-signal STEP_ID HOST PORT",
	Short: "Add a signal sent to a TCP peer",
	Args:  cobra.ExactArgs(3),
	RunE:  runActionSend,
}

var actionWaitCmd = &cobra.Command{
	Use:   "wait-signal STEP_ID PORT",
	Short: "Add a wait for a signal on a local TCP port",
	Args:  cobra.ExactArgs(2),
	RunE:  runActionWait,
}

var actionRemoveCmd = &cobra.Command{
	Use:   "remove ACTION_ID",
	Short: "Remove an action",
	Args:  cobra.ExactArgs(1),
	RunE:  runActionRemove,
}

func init() {
	rootCmd.AddCommand(actionCmd)
	actionCmd.AddCommand(actionSleepCmd, actionSendCmd, actionWaitCmd, actionRemoveCmd)
	for _, c := range []*cobra.Command{actionSleepCmd, actionSendCmd, actionWaitCmd} {
		c.Flags().Int("position", -1, "Insert position within the step (default: append)")
	}
}

type actionResult struct {
	ID   string `yaml:"id"   json:"id"`
	Step string `yaml:"step" json:"step"`
	Text string `yaml:"text" json:"text"`
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q (expected 1-65535)", s)
	}
	return port, nil
}

func addAction(cmd *cobra.Command, stepID string, a model.Action) error {
	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer closeFn()

	position, _ := cmd.Flags().GetInt("position")
	var res actionResult
	err = ws.Update(func(sc *model.Scenario) error {
		st, ok := sc.StepByID(stepID)
		if !ok {
			return fmt.Errorf("step %s: %w", stepID, model.ErrNotFound)
		}
		if position < 0 {
			st.AppendAction(a)
		} else if err := st.InsertAction(position, a); err != nil {
			return err
		}
		res = actionResult{ID: a.ActionID(), Step: st.Name, Text: a.Describe()}
		return nil
	})
	if err != nil {
		return err
	}
	return output.Print(res)
}

func runActionSleep(cmd *cobra.Command, args []string) error {
	secs, err := strconv.ParseFloat(args[1], 64)
	if err != nil || secs < 0 {
		return fmt.Errorf("invalid duration %q (expected non-negative seconds)", args[1])
	}
	return addAction(cmd, args[0], model.NewSleepAction(secs))
}

func runActionSend(cmd *cobra.Command, args []string) error {
	port, err := parsePort(args[2])
	if err != nil {
		return err
	}
	return addAction(cmd, args[0], model.NewSendSignalAction(args[1], port))
}

func runActionWait(cmd *cobra.Command, args []string) error {
	port, err := parsePort(args[1])
	if err != nil {
		return err
	}
	return addAction(cmd, args[0], model.NewWaitForSignalAction(port))
}

func runActionRemove(cmd *cobra.Command, args []string) error {
	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer closeFn()

	return ws.Update(func(sc *model.Scenario) error {
		e, ok := sc.ActionByID(args[0])
		if !ok {
			return fmt.Errorf("action %s: %w", args[0], model.ErrNotFound)
		}
		return e.Step.RemoveAction(e.ActionIndex)
	})
}
