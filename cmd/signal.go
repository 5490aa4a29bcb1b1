package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/output"
	uisignal "github.com/mj1618/uiarec/internal/signal"
)

var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Exchange rendezvous signals with running scripts",
	Long: `Scripts pause on wait-for-signal actions until a peer connects, and notify
peers with send-signal actions. These commands are the peer.`,
}

var signalSendCmd = &cobra.Command{
	Use:   "send HOST PORT",
	Short: "Release a script waiting for a signal",
	Args:  cobra.ExactArgs(2),
	RunE:  runSignalSend,
}

var signalWaitCmd = &cobra.Command{
	Use:   "wait PORT",
	Short: "Wait until a script sends a signal",
	Args:  cobra.ExactArgs(1),
	RunE:  runSignalWait,
}

func init() {
	rootCmd.AddCommand(signalCmd)
	signalCmd.AddCommand(signalSendCmd, signalWaitCmd)
	signalSendCmd.Flags().Duration("timeout", 60*time.Second, "Give up connecting after this long")
	signalWaitCmd.Flags().Duration("timeout", 0, "Give up waiting after this long (0 = forever)")
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

func runSignalSend(cmd *cobra.Command, args []string) error {
	port, err := parsePort(args[1])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()
	if err := uisignal.Send(ctx, args[0], port); err != nil {
		return err
	}
	return output.Print(map[string]any{"sent": true, "host": args[0], "port": port})
}

func runSignalWait(cmd *cobra.Command, args []string) error {
	port, err := parsePort(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()
	appLog.Info("waiting for signal", "port", port)
	peer, err := uisignal.Wait(ctx, port)
	if err != nil {
		return err
	}
	return output.Print(map[string]any{"received": true, "port": port, "peer": peer})
}
