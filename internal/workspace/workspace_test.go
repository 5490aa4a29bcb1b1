package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/uiarec/internal/compiler"
	"github.com/mj1618/uiarec/internal/history"
	"github.com/mj1618/uiarec/internal/logging"
	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/runner"
	"github.com/mj1618/uiarec/internal/script"
	"github.com/mj1618/uiarec/internal/store"
)

type fakeRecorder struct {
	mu      sync.Mutex
	running bool
	starts  int
	queue   []model.Action
	path    model.Path
	keys    string
}

func (f *fakeRecorder) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	f.starts++
	return nil
}

func (f *fakeRecorder) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
}

func (f *fakeRecorder) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeRecorder) TryPop() (model.Action, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil, false
	}
	a := f.queue[0]
	f.queue = f.queue[1:]
	return a, true
}

func (f *fakeRecorder) CurrentPath() model.Path { return f.path }

func (f *fakeRecorder) KeyboardState() (bool, model.Path, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys != "", f.path, f.keys
}

func (f *fakeRecorder) typing(keys string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = keys
}

func (f *fakeRecorder) push(a model.Action) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, a)
}

func okPath() model.Path {
	ok := model.NewPathRecord(model.Snapshot{Title: "OK", ControlType: "Button"})
	ok.ID = "rec-ok"
	return model.NewPath(ok)
}

func newWorkspace(t *testing.T, opts Options) *Workspace {
	t.Helper()
	if opts.Path == "" {
		opts.Path = filepath.Join(t.TempDir(), "scenario.yaml")
	}
	opts.Logger = logging.Discard()
	return New(opts)
}

func TestUpdatePersists(t *testing.T) {
	ws := newWorkspace(t, Options{})
	require.NoError(t, ws.Update(func(sc *model.Scenario) error {
		sc.AddStep("One")
		return nil
	}))

	sc, err := store.Load(ws.Path())
	require.NoError(t, err)
	require.Len(t, sc.Steps, 1)
	assert.Equal(t, "One", sc.Steps[0].Name)
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	ws := newWorkspace(t, Options{})
	err := ws.Update(func(sc *model.Scenario) error {
		sc.AddStep("One")
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	_, statErr := os.Stat(ws.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestScenarioCacheInvalidatedByUpdate(t *testing.T) {
	ws := newWorkspace(t, Options{CacheTTL: time.Hour})
	sc, err := ws.Scenario()
	require.NoError(t, err)
	assert.Empty(t, sc.Steps)

	require.NoError(t, ws.Update(func(sc *model.Scenario) error {
		sc.AddStep("One")
		return nil
	}))
	sc, err = ws.Scenario()
	require.NoError(t, err)
	assert.Len(t, sc.Steps, 1)
}

func TestScenarioCacheServesStaleUntilInvalidated(t *testing.T) {
	ws := newWorkspace(t, Options{CacheTTL: time.Hour})
	_, err := ws.Scenario()
	require.NoError(t, err)

	external := model.New()
	external.AddStep("External")
	require.NoError(t, store.Save(ws.Path(), external))

	sc, err := ws.Scenario()
	require.NoError(t, err)
	assert.Empty(t, sc.Steps, "cached copy within ttl")

	ws.Invalidate()
	sc, err = ws.Scenario()
	require.NoError(t, err)
	assert.Len(t, sc.Steps, 1)
}

func TestRecordingFlow(t *testing.T) {
	rec := &fakeRecorder{path: okPath()}
	ws := newWorkspace(t, Options{Recorder: rec})

	stepID, err := ws.StartRecording("")
	require.NoError(t, err)
	assert.NotEmpty(t, stepID)

	st := ws.Status()
	assert.True(t, st.Available)
	assert.True(t, st.Recording)
	assert.Equal(t, stepID, st.StepID)
	assert.Equal(t, "[OK]", st.Path)
	assert.False(t, st.Typing)

	rec.typing("he")
	st = ws.Status()
	assert.True(t, st.Typing)
	assert.Equal(t, "he", st.Keys)
	assert.Equal(t, "[OK]", st.TypingPath)
	rec.typing("")

	rec.push(model.NewClickAction(okPath(), model.ButtonLeft, false))
	n, err := ws.Drain()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec.push(model.NewSleepAction(1))
	n, err = ws.StopRecording()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, ws.Status().Recording)

	sc, err := ws.Scenario()
	require.NoError(t, err)
	require.Len(t, sc.Steps, 1)
	assert.Equal(t, "Recorded", sc.Steps[0].Name)
	require.Len(t, sc.Steps[0].Actions, 2)
	assert.Equal(t, model.ActionClick, sc.Steps[0].Actions[0].Kind())
	assert.Equal(t, model.ActionSleep, sc.Steps[0].Actions[1].Kind())

	_, err = ws.Drain()
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestStartRecordingUnknownStep(t *testing.T) {
	rec := &fakeRecorder{}
	ws := newWorkspace(t, Options{Recorder: rec})
	_, err := ws.StartRecording("missing")
	assert.Error(t, err)
	assert.Zero(t, rec.starts)
}

func TestRecordingUnavailable(t *testing.T) {
	ws := newWorkspace(t, Options{})
	_, err := ws.StartRecording("")
	assert.ErrorIs(t, err, ErrNoRecorder)
	assert.False(t, ws.Status().Available)
}

func TestCorrelate(t *testing.T) {
	ws := newWorkspace(t, Options{})
	require.NoError(t, ws.Update(func(sc *model.Scenario) error {
		sc.AddStep("Confirm").AppendAction(model.NewClickAction(okPath(), model.ButtonLeft, false))
		return nil
	}))

	f, loc, err := ws.Correlate(script.FaultMarker + " " + script.FaultAmbiguous + " rec-ok\n")
	require.NoError(t, err)
	assert.Equal(t, compiler.FaultAmbiguous, f.Kind)
	require.NotNil(t, loc)
	assert.Equal(t, "Confirm", loc.Step.Name)

	_, loc, err = ws.Correlate("Traceback\nNameError\n")
	assert.NoError(t, err)
	assert.Nil(t, loc)

	_, _, err = ws.Correlate(script.FaultMarker + " " + script.FaultNotFound + " rec-nope\n")
	assert.ErrorIs(t, err, compiler.ErrCorrelation)
}

func TestRunRecordsHistory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell interpreter fake requires a POSIX shell")
	}
	dir := t.TempDir()
	interp := filepath.Join(dir, "python")
	require.NoError(t, os.WriteFile(interp, []byte("#!/bin/sh\necho '"+script.FaultMarker+" "+script.FaultNotFound+" rec-ok' >&2\nexit 3\n"), 0o755))

	db, err := history.Open(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	defer db.Close()

	ws := newWorkspace(t, Options{
		Runner:  runner.New(runner.Options{Interpreter: interp, WorkDir: dir, Timeout: time.Minute, Logger: logging.Discard()}),
		History: db,
		Debug:   true,
	})
	require.NoError(t, ws.Update(func(sc *model.Scenario) error {
		sc.AddStep("Confirm").AppendAction(model.NewClickAction(okPath(), model.ButtonLeft, false))
		return nil
	}))

	out, err := ws.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, script.ModeDebug, out.Result.Mode)
	require.NotNil(t, out.Result.Location)
	assert.NotZero(t, out.Run.ID)

	runs, err := ws.History(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Confirm", runs[0].Step)
	assert.Equal(t, "OK", runs[0].Element)
}

func TestRunWithoutRunner(t *testing.T) {
	ws := newWorkspace(t, Options{})
	_, err := ws.Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoRunner)
}
