// Package workspace binds one scenario file to the recorder, compiler, runner
// and run history. The CLI, the HTTP API and the MCP server all drive it.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mj1618/uiarec/internal/compiler"
	"github.com/mj1618/uiarec/internal/history"
	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/runner"
	"github.com/mj1618/uiarec/internal/script"
	"github.com/mj1618/uiarec/internal/store"
)

var (
	// ErrNoRecorder is returned by recording operations when no recorder
	// is available on this platform.
	ErrNoRecorder = errors.New("recording is not available")
	// ErrNoRunner is returned by Run when no runner is configured.
	ErrNoRunner = errors.New("no script runner configured")
	// ErrNotRecording is returned by Drain when no recording is active.
	ErrNotRecording = errors.New("not recording")
)

// Recorder is the subset of recorder.Recorder the workspace drives.
type Recorder interface {
	Start() error
	Stop()
	Running() bool
	TryPop() (model.Action, bool)
	CurrentPath() model.Path
	KeyboardState() (open bool, target model.Path, keys string)
}

// Options configures a Workspace.
type Options struct {
	Path     string
	Recorder Recorder
	Runner   *runner.Runner
	History  *history.DB
	// Debug compiles run scripts with fault correlation.
	Debug    bool
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// Workspace serializes every mutation of one scenario file.
type Workspace struct {
	path    string
	rec     Recorder
	runner  *runner.Runner
	history *history.DB
	debug   bool
	log     *slog.Logger
	cache   *scenarioCache

	mu sync.Mutex
	// target is the step receiving recorded actions while recording.
	target string
}

func New(opts Options) *Workspace {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Workspace{
		path:    opts.Path,
		rec:     opts.Recorder,
		runner:  opts.Runner,
		history: opts.History,
		debug:   opts.Debug,
		log:     log,
		cache:   newScenarioCache(opts.CacheTTL),
	}
}

// Path is the scenario file.
func (w *Workspace) Path() string { return w.path }

// Scenario returns the current scenario. The result may be shared with other
// readers and must not be modified; use Update to change it.
func (w *Workspace) Scenario() (*model.Scenario, error) {
	return w.cache.get(w.path)
}

// Invalidate drops any cached copy of the scenario, e.g. after the file
// changed on disk.
func (w *Workspace) Invalidate() {
	w.cache.invalidate(w.path)
}

// Update loads the scenario, applies fn and saves the result. Nothing is
// written when fn fails.
func (w *Workspace) Update(fn func(*model.Scenario) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.updateLocked(fn)
}

func (w *Workspace) updateLocked(fn func(*model.Scenario) error) error {
	sc, err := store.LoadOrNew(w.path)
	if err != nil {
		return err
	}
	if err := fn(sc); err != nil {
		return err
	}
	if err := store.Save(w.path, sc); err != nil {
		return err
	}
	w.cache.invalidate(w.path)
	return nil
}

// Compile renders the scenario (or the selected steps) as a script.
func (w *Workspace) Compile(opts compiler.Options) (string, error) {
	sc, err := w.Scenario()
	if err != nil {
		return "", err
	}
	return compiler.Compile(sc, opts)
}

// RunOutcome is a finished run and the history row written for it.
type RunOutcome struct {
	Result *runner.Result
	Run    history.Run
}

// Run compiles and executes the scenario. When debug is nil the workspace
// default decides the compile mode.
func (w *Workspace) Run(ctx context.Context, stepIDs []string, debug *bool) (*RunOutcome, error) {
	if w.runner == nil {
		return nil, ErrNoRunner
	}
	sc, err := w.Scenario()
	if err != nil {
		return nil, err
	}
	mode := script.ModePlain
	if (debug == nil && w.debug) || (debug != nil && *debug) {
		mode = script.ModeDebug
	}
	res, err := w.runner.Run(ctx, sc, compiler.Options{Mode: mode, StepIDs: stepIDs})
	if err != nil {
		return nil, err
	}
	out := &RunOutcome{Result: res, Run: history.FromResult(w.path, stepIDs, res)}
	if w.history != nil {
		id, err := w.history.Record(out.Run)
		if err != nil {
			w.log.Warn("history record failed", slog.String("error", err.Error()))
		} else {
			out.Run.ID = id
		}
	}
	return out, nil
}

// History lists recent runs of this scenario.
func (w *Workspace) History(limit int) ([]history.Run, error) {
	if w.history == nil {
		return []history.Run{}, nil
	}
	return w.history.List(w.path, limit)
}

// Correlate parses a script's stderr and traces the fault to the scenario.
func (w *Workspace) Correlate(stderr string) (compiler.Fault, *compiler.Location, error) {
	sc, err := w.Scenario()
	if err != nil {
		return compiler.Fault{}, nil, err
	}
	f := compiler.ParseFault(stderr)
	loc, ok, err := compiler.CorrelateFault(sc, f)
	if err != nil || !ok {
		return f, nil, err
	}
	return f, &loc, nil
}

// Status describes the recording state.
type Status struct {
	Available bool   `yaml:"available"         json:"available"`
	Recording bool   `yaml:"recording"         json:"recording"`
	StepID    string `yaml:"step_id,omitempty" json:"step_id,omitempty"`
	Path      string `yaml:"path,omitempty"    json:"path,omitempty"`
	// Typing is set while keyboard entry is open; Keys holds what has been
	// typed so far and TypingPath the element it will be sent to.
	Typing     bool   `yaml:"typing,omitempty"      json:"typing,omitempty"`
	Keys       string `yaml:"keys,omitempty"        json:"keys,omitempty"`
	TypingPath string `yaml:"typing_path,omitempty" json:"typing_path,omitempty"`
}

// Status reports whether recording is active and what is under the cursor.
func (w *Workspace) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rec == nil {
		return Status{}
	}
	st := Status{Available: true, Recording: w.rec.Running()}
	if st.Recording {
		st.StepID = w.target
		st.Path = w.rec.CurrentPath().String()
		if open, target, keys := w.rec.KeyboardState(); open {
			st.Typing, st.Keys, st.TypingPath = true, keys, target.String()
		}
	}
	return st
}

// StartRecording begins recording into the step with stepID. An empty id
// records into the last step, creating one when the scenario has none.
func (w *Workspace) StartRecording(stepID string) (string, error) {
	if w.rec == nil {
		return "", ErrNoRecorder
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.updateLocked(func(sc *model.Scenario) error {
		switch {
		case stepID != "":
			if _, ok := sc.StepByID(stepID); !ok {
				return fmt.Errorf("unknown step id %q", stepID)
			}
		case len(sc.Steps) == 0:
			stepID = sc.AddStep("Recorded").ID
		default:
			stepID = sc.Steps[len(sc.Steps)-1].ID
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if err := w.rec.Start(); err != nil {
		return "", err
	}
	w.target = stepID
	w.log.Info("recording started", slog.String("step", stepID))
	return stepID, nil
}

// Drain moves every queued action into the recording step and saves.
// It returns how many actions were added.
func (w *Workspace) Drain() (int, error) {
	if w.rec == nil {
		return 0, ErrNoRecorder
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.target == "" {
		return 0, ErrNotRecording
	}
	return w.drainLocked()
}

func (w *Workspace) drainLocked() (int, error) {
	var popped []model.Action
	for {
		a, ok := w.rec.TryPop()
		if !ok {
			break
		}
		popped = append(popped, a)
	}
	if len(popped) == 0 {
		return 0, nil
	}
	err := w.updateLocked(func(sc *model.Scenario) error {
		st, ok := sc.StepByID(w.target)
		if !ok {
			return fmt.Errorf("recording step %q no longer exists", w.target)
		}
		for _, a := range popped {
			st.AppendAction(a)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, a := range popped {
		w.log.Info("recorded action", slog.String("action", a.Describe()))
	}
	return len(popped), nil
}

// StopRecording stops the recorder and drains what it queued.
func (w *Workspace) StopRecording() (int, error) {
	if w.rec == nil {
		return 0, ErrNoRecorder
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rec.Stop()
	if w.target == "" {
		return 0, nil
	}
	n, err := w.drainLocked()
	w.log.Info("recording stopped", slog.String("step", w.target), slog.Int("drained", n))
	w.target = ""
	return n, err
}
