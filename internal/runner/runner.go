// Package runner executes compiled scenarios with a Python interpreter and
// traces resolution faults back to the scenario.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/mj1618/uiarec/internal/compiler"
	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/script"
)

// Options configures a Runner.
type Options struct {
	Interpreter string
	// WorkDir receives compiled scripts; empty uses the system temp dir.
	WorkDir string
	Timeout time.Duration
	// KeepScript leaves the compiled script on disk after the run.
	KeepScript bool
	Logger     *slog.Logger
}

// Runner compiles and executes scenarios.
type Runner struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options) *Runner {
	if opts.Interpreter == "" {
		opts.Interpreter = "python"
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{opts: opts, log: log}
}

// Result describes one execution.
type Result struct {
	Script   string
	Mode     script.Mode
	Started  time.Time
	Duration time.Duration
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	// Fault is set when the script failed.
	Fault *compiler.Fault
	// Location is set when the fault was traced to a path record.
	Location *compiler.Location
	// CorrelationErr is set when a resolution fault named a record the
	// scenario does not contain.
	CorrelationErr error
}

// OK reports whether the script completed successfully.
func (r *Result) OK() bool {
	return r.ExitCode == 0 && !r.TimedOut && r.Fault == nil
}

// Summary is a one-line human description of the outcome.
func (r *Result) Summary() string {
	switch {
	case r.OK():
		return fmt.Sprintf("passed in %s", r.Duration.Round(time.Millisecond))
	case r.TimedOut:
		return fmt.Sprintf("timed out after %s", r.Duration.Round(time.Millisecond))
	case r.Location != nil:
		return fmt.Sprintf("%s at %s", r.Fault.Kind, r.Location)
	case r.CorrelationErr != nil:
		return fmt.Sprintf("%s: %v", r.Fault.Kind, r.CorrelationErr)
	default:
		return fmt.Sprintf("failed with exit code %d", r.ExitCode)
	}
}

// Run compiles sc with opts, executes it and classifies the outcome. The
// returned error covers only failures to compile or launch the script; a
// failing script is reported through the Result.
func (r *Runner) Run(ctx context.Context, sc *model.Scenario, opts compiler.Options) (*Result, error) {
	src, err := compiler.Compile(sc, opts)
	if err != nil {
		return nil, err
	}
	path, err := r.writeScript(src)
	if err != nil {
		return nil, err
	}
	if !r.opts.KeepScript {
		defer os.Remove(path)
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.opts.Interpreter, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1", "PYTHONIOENCODING=utf-8")
	cmd.WaitDelay = 2 * time.Second

	res := &Result{Script: path, Mode: opts.Mode, Started: time.Now()}
	r.log.Info("running script", slog.String("interpreter", r.opts.Interpreter), slog.String("script", path), slog.String("mode", opts.Mode.String()))
	runErr := cmd.Run()
	res.Duration = time.Since(res.Started)
	res.Stdout, res.Stderr = stdout.String(), stderr.String()

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case ctx.Err() != nil:
		res.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
		res.ExitCode = -1
		if !res.TimedOut {
			return res, ctx.Err()
		}
	case errors.As(runErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("start %s: %w", r.opts.Interpreter, runErr)
	}

	if res.ExitCode != 0 && !res.TimedOut {
		fault := compiler.ParseFault(res.Stderr)
		res.Fault = &fault
		loc, ok, err := compiler.CorrelateFault(sc, fault)
		switch {
		case err != nil:
			res.CorrelationErr = err
			r.log.Error("fault correlation failed", slog.String("record", fault.RecordID), slog.String("error", err.Error()))
		case ok:
			res.Location = &loc
		}
	}
	r.log.Info("script finished", slog.Int("exit_code", res.ExitCode), slog.String("result", res.Summary()))
	return res, nil
}

func (r *Runner) writeScript(src string) (string, error) {
	dir := r.opts.WorkDir
	if dir == "" {
		dir = os.TempDir()
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "uiarec-*.py")
	if err != nil {
		return "", fmt.Errorf("create script file: %w", err)
	}
	if _, err := f.WriteString(src); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write script: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write script: %w", err)
	}
	return f.Name(), nil
}
