package cmd

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiarec/internal/history"
	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/platform"
	"github.com/mj1618/uiarec/internal/recorder"
	"github.com/mj1618/uiarec/internal/runner"
	"github.com/mj1618/uiarec/internal/workspace"
)

// workspaceOptions selects the optional collaborators a command needs.
type workspaceOptions struct {
	record  bool
	run     bool
	history bool
	// cacheTTL keeps parsed scenarios for long-running commands.
	cacheTTL time.Duration
}

// openWorkspace builds the workspace for the --scenario file. The returned
// close function releases the history database.
func openWorkspace(cmd *cobra.Command, wo workspaceOptions) (*workspace.Workspace, func(), error) {
	path, _ := rootCmd.PersistentFlags().GetString("scenario")
	opts := workspace.Options{
		Path:     path,
		Debug:    appConfig.Runner.Debug,
		CacheTTL: wo.cacheTTL,
		Logger:   appLog,
	}
	closeFn := func() {}

	if wo.run {
		opts.Runner = runner.New(runner.Options{
			Interpreter: appConfig.Runner.Interpreter,
			WorkDir:     appConfig.Runner.WorkDir,
			Timeout:     appConfig.Runner.Timeout,
			Logger:      appLog,
		})
	}

	if (wo.run || wo.history) && appConfig.History.Enabled() {
		db, err := history.Open(appConfig.History.Path)
		if err != nil {
			return nil, nil, err
		}
		opts.History = db
		closeFn = func() {
			if err := db.Close(); err != nil {
				appLog.Warn("close history", slog.String("error", err.Error()))
			}
		}
	}

	if wo.record {
		rec, err := newRecorder()
		switch {
		case errors.Is(err, platform.ErrUnsupported):
			appLog.Warn("recording unavailable", slog.String("error", err.Error()))
		case err != nil:
			closeFn()
			return nil, nil, err
		default:
			opts.Recorder = rec
		}
	}

	return workspace.New(opts), closeFn, nil
}

func newRecorder() (*recorder.Recorder, error) {
	p, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}
	return recorder.New(p, appConfig.Recorder.Recorder(),
		recorder.WithLogger(appLog),
		recorder.WithOnConfirm(func(path model.Path) {
			appLog.Debug("target confirmed", slog.String("path", path.String()))
		}),
	)
}
