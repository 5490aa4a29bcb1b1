package store

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/uiarec/internal/logging"
	"github.com/mj1618/uiarec/internal/model"
)

func sampleScenario() *model.Scenario {
	sc := model.New()
	st := sc.AddStep("Login")
	path := model.NewPath(
		model.NewPathRecord(model.Snapshot{Title: "Desktop 1", ControlType: "Pane"}),
		model.NewPathRecord(model.Snapshot{Title: "Login", ControlType: "Window", ClassName: "#32770", Handle: 42}),
		model.NewPathRecord(model.Snapshot{ControlType: "Edit", AutoID: "user", ControlID: 1001}),
	)
	st.AppendAction(model.NewClickAction(path, model.ButtonLeft, true))
	st.AppendAction(model.NewKeyboardAction(path, "admin{VK_TAB}"))
	st.AppendAction(model.NewSleepAction(0.25))
	sc.AddStep("Finish").AppendAction(model.NewSendSignalAction("localhost", 7000))
	return sc
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, name := range []string{"scenario.yaml", "scenario.json", "nested/dir/scenario.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			sc := sampleScenario()
			require.NoError(t, Save(path, sc))

			got, err := Load(path)
			require.NoError(t, err)
			require.Len(t, got.Steps, 2)
			for i, st := range sc.Steps {
				assert.Equal(t, st.ID, got.Steps[i].ID)
				assert.Equal(t, st.Name, got.Steps[i].Name)
				require.Len(t, got.Steps[i].Actions, len(st.Actions))
				for j, a := range st.Actions {
					assert.Equal(t, a.ActionID(), got.Steps[i].Actions[j].ActionID())
					assert.Equal(t, a.Describe(), got.Steps[i].Actions[j].Describe())
				}
			}
			click := got.Steps[0].Actions[0].(*model.ClickAction)
			assert.Equal(t, sc.Steps[0].Actions[0].(*model.ClickAction).Path, click.Path)

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temp file left behind")
		})
	}
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFor("a.JSON"))
	assert.Equal(t, FormatYAML, FormatFor("a.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("a"))
}

func TestLoad_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.yaml")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNotExist)

	sc, err := LoadOrNew(path)
	require.NoError(t, err)
	assert.Empty(t, sc.Steps)
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - actions:\n      - type: fly\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotExist)
}

func TestEncode_YAMLShape(t *testing.T) {
	data, err := Encode(sampleScenario(), FormatYAML)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "type: click")
	assert.Contains(t, text, "type: keyboard")
	assert.Contains(t, text, "admin{VK_TAB}")
	assert.Contains(t, text, "control_type:")
}

func TestWatch_ReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, Save(path, sampleScenario()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, logging.Discard(), func() { changes.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, Save(path, model.New()))

	require.Eventually(t, func() bool { return changes.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
