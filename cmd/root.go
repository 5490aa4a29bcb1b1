package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/config"
	"github.com/mj1618/uiarec/internal/logging"
	"github.com/mj1618/uiarec/internal/output"
	"github.com/mj1618/uiarec/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "uiarec",
	Short: "Record UI actions and compile them into pywinauto scripts",
	Long: `uiarec records clicks and key entry against live UI elements, stores them
as an editable scenario, compiles the scenario into a pywinauto script, runs
it, and traces element faults back to the recorded path that failed.`,
	SilenceUsage: true,
}

// Settings shared by every command, filled in by the root pre-run hook.
var (
	appConfig *config.Config
	appLog    *slog.Logger
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	addGlobalFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Use the root persistent flags directly so subcommand locals cannot
		// shadow them.
		flags := rootCmd.PersistentFlags()

		format := flags.Lookup("format").Value.(*formatValue)
		output.OutputFormat = format.Format()
		if pretty, err := flags.GetBool("pretty"); err == nil && pretty {
			output.PrettyOutput = true
		}

		cfgPath, _ := flags.GetString("config")
		cfg, err := config.Resolve(cfgPath)
		if err != nil {
			return err
		}
		if lvl, _ := flags.GetString("log-level"); lvl != "" {
			cfg.Log.Level = lvl
		}
		log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		slog.SetDefault(log)
		appConfig, appLog = cfg, log
		return nil
	}
}
