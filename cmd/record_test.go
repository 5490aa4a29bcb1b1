package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mj1618/uiarec/internal/workspace"
)

type fakeSession struct {
	drainN   int
	drainErr error
	stopErr  error
	stops    int
}

func (f *fakeSession) Drain() (int, error) { return f.drainN, f.drainErr }

func (f *fakeSession) StopRecording() (int, error) {
	f.stops++
	return 0, f.stopErr
}

func TestDrainTick_OK(t *testing.T) {
	s := &fakeSession{drainN: 2}
	n, err := drainTick(s)
	if err != nil || n != 2 {
		t.Fatalf("drainTick = %d, %v", n, err)
	}
	if s.stops != 0 {
		t.Error("a successful drain should not stop recording")
	}
}

func TestDrainTick_ReportsStopError(t *testing.T) {
	saveErr := errors.New("disk full")
	stopErr := errors.New("hook still running")
	s := &fakeSession{drainErr: saveErr, stopErr: stopErr}

	_, err := drainTick(s)
	if s.stops != 1 {
		t.Errorf("stops = %d, want 1", s.stops)
	}
	if !errors.Is(err, saveErr) {
		t.Errorf("expected save error, got %v", err)
	}
	if !errors.Is(err, stopErr) {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestRenderStatus(t *testing.T) {
	var buf bytes.Buffer
	renderStatus(&buf, workspace.Status{Recording: true, Path: "[Desktop][App][OK]"}, 3)
	out := buf.String()
	for _, want := range []string{"REC", "[Desktop][App][OK]", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("status line %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "typing") {
		t.Errorf("status line should not mention typing: %q", out)
	}

	buf.Reset()
	renderStatus(&buf, workspace.Status{Recording: true, Typing: true, Keys: "he"}, 0)
	out = buf.String()
	if !strings.Contains(out, "(none)") || !strings.Contains(out, `typing`) || !strings.Contains(out, `"he"`) {
		t.Errorf("status line %q should show the open keyboard entry", out)
	}
}
