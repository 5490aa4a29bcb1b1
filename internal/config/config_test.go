package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uiarec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	rc := cfg.Recorder.Recorder()
	assert.Equal(t, 200*time.Millisecond, rc.ScanInterval)
	assert.Equal(t, 3, rc.StableTicks)
	assert.Equal(t, 2*time.Second, rc.JoinTimeout)
	assert.Equal(t, 300*time.Millisecond, rc.DoubleClickWindow)
	assert.Equal(t, "rcontrol", rc.CommitKey)
}

func TestLoad_OverridesAndExpandsEnv(t *testing.T) {
	t.Setenv("UIAREC_TEST_PY", `C:\Python312\python.exe`)
	path := writeConfig(t, `
log:
  level: WARNING
recorder:
  scan_interval: 100ms
  commit_key: RMenu
runner:
  interpreter: ${UIAREC_TEST_PY}
api:
  port: 9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 100*time.Millisecond, cfg.Recorder.ScanInterval)
	assert.Equal(t, 3, cfg.Recorder.StableTicks)
	assert.Equal(t, "rmenu", cfg.Recorder.CommitKey)
	assert.Equal(t, `C:\Python312\python.exe`, cfg.Runner.Interpreter)
	assert.Equal(t, "127.0.0.1:9000", cfg.API.Address())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad commit key", "recorder:\n  commit_key: space\n"},
		{"negative ticks", "recorder:\n  stable_ticks: -1\n"},
		{"bad port", "api:\n  port: 70000\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad yaml", "recorder: [\n"},
		{"bad duration", "recorder:\n  scan_interval: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv(EnvConfigFile, "")
	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, 8765, cfg.API.Port)

	require.NoError(t, os.WriteFile(DefaultFile, []byte("api:\n  port: 9100\n"), 0o644))
	cfg, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.API.Port)

	other := writeConfig(t, "api:\n  port: 9200\n")
	t.Setenv(EnvConfigFile, other)
	cfg, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.API.Port)

	_, err = Resolve(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
