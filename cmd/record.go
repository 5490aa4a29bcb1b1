package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/workspace"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record clicks and key entry into a scenario step",
	Long: `Record actions against the element under the mouse pointer until Ctrl+C.

Hover over an element until its outline turns green, then click it. To enter
text, hover the target, press the commit key (right Ctrl by default), type,
and press the commit key again. Recorded actions are appended to the step
and saved as they arrive.

Examples:
  uiarec record
  uiarec record --step 3f1c...
  uiarec record --new-step "Fill login form"`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().String("step", "", "Step id to record into (default: last step)")
	recordCmd.Flags().String("new-step", "", "Create a step with this name and record into it")
	recordCmd.Flags().Duration("poll", 250*time.Millisecond, "How often recorded actions are saved")
}

var (
	recBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#C0392B")).
			Padding(0, 1)
	recLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	recTarget = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	recCount  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	recKeys   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func runRecord(cmd *cobra.Command, args []string) error {
	stepID, _ := cmd.Flags().GetString("step")
	newStep, _ := cmd.Flags().GetString("new-step")
	poll, _ := cmd.Flags().GetDuration("poll")
	if stepID != "" && newStep != "" {
		return fmt.Errorf("--step and --new-step are mutually exclusive")
	}

	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{record: true})
	if err != nil {
		return err
	}
	defer closeFn()
	if !ws.Status().Available {
		return workspace.ErrNoRecorder
	}

	if newStep != "" {
		err := ws.Update(func(sc *model.Scenario) error {
			stepID = sc.AddStep(newStep).ID
			return nil
		})
		if err != nil {
			return err
		}
	}

	stepID, err = ws.StartRecording(stepID)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status := cmd.ErrOrStderr()
	total := 0
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n, err := ws.StopRecording()
			total += n
			fmt.Fprintln(status)
			fmt.Fprintf(status, "recorded %d action(s) into step %s\n", total, stepID)
			return err
		case <-ticker.C:
			n, err := drainTick(ws)
			if err != nil {
				fmt.Fprintln(status)
				return err
			}
			total += n
			renderStatus(status, ws.Status(), total)
		}
	}
}

// recordingSession is the part of a workspace the record loop drives.
type recordingSession interface {
	Drain() (int, error)
	StopRecording() (int, error)
}

// drainTick saves queued actions. A failed save ends the session, and any
// error from stopping is reported with it.
func drainTick(s recordingSession) (int, error) {
	n, err := s.Drain()
	if err != nil {
		_, stopErr := s.StopRecording()
		return n, errors.Join(err, stopErr)
	}
	return n, nil
}

func renderStatus(w io.Writer, st workspace.Status, total int) {
	target := st.Path
	if target == "" {
		target = "(none)"
	}
	parts := []string{
		recBadge.Render("REC"), " ",
		recLabel.Render("target "), recTarget.Render(target), "  ",
		recLabel.Render("recorded "), recCount.Render(fmt.Sprint(total)),
	}
	if st.Typing {
		parts = append(parts, "  ", recLabel.Render("typing "), recKeys.Render(fmt.Sprintf("%q", st.Keys)))
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	// Clear to end of line so a shorter target does not leave residue.
	fmt.Fprintf(w, "\r%s\x1b[K", line)
}
