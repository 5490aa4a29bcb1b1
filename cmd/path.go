package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/output"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Inspect and edit the element path of a recorded action",
}

var pathShowCmd = &cobra.Command{
	Use:   "show ACTION_ID",
	Short: "Print each path record with its editable property text",
	Args:  cobra.ExactArgs(1),
	RunE:  runPathShow,
}

var pathEditCmd = &cobra.Command{
	Use:   "edit ACTION_ID INDEX",
	Short: "Replace one record's properties from enumeration text",
	Long: `Replace the properties of record INDEX (0 is the desktop) of the action's path.
The text has one key=value per line; a leading '-' keeps the value but stops
the script from matching on it. Keys left out are cleared.

Examples:
  uiarec path show 3f1c...
  printf "title='Save'\ncontrol_type='Button'\n" | uiarec path edit 3f1c... 2
  uiarec path edit 3f1c... 2 --file record.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runPathEdit,
}

func init() {
	rootCmd.AddCommand(pathCmd)
	pathCmd.AddCommand(pathShowCmd, pathEditCmd)
	pathEditCmd.Flags().StringP("file", "f", "", "Read the text from a file instead of stdin")
}

func runPathShow(cmd *cobra.Command, args []string) error {
	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer closeFn()

	sc, err := ws.Scenario()
	if err != nil {
		return err
	}
	e, ok := sc.ActionByID(args[0])
	if !ok {
		return fmt.Errorf("action %s: %w", args[0], model.ErrNotFound)
	}
	pa, ok := e.Action.(model.PathAction)
	if !ok {
		return fmt.Errorf("action %s (%s) has no element path", args[0], e.Action.Kind())
	}
	return output.Print(output.NewPathResult(args[0], pa.Target()))
}

func runPathEdit(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid record index %q", args[1])
	}
	text, err := readEditText(cmd)
	if err != nil {
		return err
	}

	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{})
	if err != nil {
		return err
	}
	defer closeFn()

	var res output.PathResult
	err = ws.Update(func(sc *model.Scenario) error {
		if err := sc.EditRecord(args[0], index, text); err != nil {
			return err
		}
		e, _ := sc.ActionByID(args[0])
		res = output.NewPathResult(args[0], e.Action.(model.PathAction).Target())
		return nil
	})
	if err != nil {
		return err
	}
	return output.Print(res)
}

func readEditText(cmd *cobra.Command) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
