package recorder

import (
	"testing"

	"github.com/mj1618/uiarec/internal/model"
)

func TestTranslateChord(t *testing.T) {
	tests := []struct {
		keys []string
		want string
	}{
		{[]string{"a"}, "a"},
		{[]string{"A"}, "a"},
		{[]string{"7"}, "7"},
		{[]string{"space"}, " "},
		{[]string{"return"}, "{VK_RETURN}"},
		{[]string{"Back"}, "{VK_BACK}"},
		{[]string{"tab"}, "{VK_TAB}"},
		{[]string{"f5"}, "{VK_F5}"},
		{[]string{"lshift"}, "{VK_LSHIFT}"},
		{[]string{"lshift", "a"}, "{VK_LSHIFT down}a{VK_LSHIFT up}"},
		{[]string{"lcontrol", "lshift", "s"}, "{VK_LCONTROL down}{VK_LSHIFT down}s{VK_LCONTROL up}{VK_LSHIFT up}"},
		{[]string{"rmenu", "f4"}, "{VK_RMENU down}{VK_F4}{VK_RMENU up}"},
		{[]string{"+"}, "{+}"},
		{[]string{"("}, "{(}"},
		{[]string{"%"}, "{%}"},
		{[]string{"-"}, "-"},
	}
	for _, tt := range tests {
		if got := TranslateChord(tt.keys); got != tt.want {
			t.Errorf("TranslateChord(%q) = %q, want %q", tt.keys, got, tt.want)
		}
	}
}

type keyCapture struct {
	target string
	keys   string
}

func newTestAccumulator() (*KeyboardAccumulator, *[]keyCapture, *int) {
	var got []keyCapture
	n := 0
	target := func() model.Path {
		n++
		return model.NewPath(model.NewPathRecord(model.Snapshot{Title: "field" + string(rune('0'+n)), ControlType: "Edit"}))
	}
	k := NewKeyboardAccumulator("rcontrol", target, func(p model.Path, keys string) {
		got = append(got, keyCapture{p.String(), keys})
	})
	return k, &got, &n
}

func TestKeyboardAccumulator_Capture(t *testing.T) {
	k, got, _ := newTestAccumulator()
	k.Press([]string{"h"}) // ignored while closed
	k.Press([]string{"rcontrol"})
	k.Press([]string{"h"})
	k.Press([]string{"lshift", "i"})
	k.Press([]string{"return"})
	k.Press([]string{"Rcontrol"})

	if len(*got) != 1 {
		t.Fatalf("captures = %+v, want 1", *got)
	}
	want := keyCapture{"[field1]", "h{VK_LSHIFT down}i{VK_LSHIFT up}{VK_RETURN}"}
	if (*got)[0] != want {
		t.Errorf("capture = %+v, want %+v", (*got)[0], want)
	}
	if open, _, _ := k.State(); open {
		t.Error("buffer should be closed after commit")
	}
}

func TestKeyboardAccumulator_EmptyCommitRecaptures(t *testing.T) {
	k, got, n := newTestAccumulator()
	k.Press([]string{"rcontrol"})
	k.Press([]string{"rcontrol"})
	if *n != 2 {
		t.Fatalf("target resolved %d times, want 2", *n)
	}
	open, target, keys := k.State()
	if !open || target.String() != "[field2]" || keys != "" {
		t.Errorf("state = %v %s %q", open, target, keys)
	}
	k.Press([]string{"x"})
	k.Press([]string{"rcontrol"})
	if len(*got) != 1 || (*got)[0] != (keyCapture{"[field2]", "x"}) {
		t.Errorf("captures = %+v", *got)
	}
}

func TestKeyboardAccumulator_CommitKeyInChordIsText(t *testing.T) {
	k, got, _ := newTestAccumulator()
	k.Press([]string{"rcontrol"})
	k.Press([]string{"rcontrol", "c"})
	k.Press([]string{"rcontrol"})
	if len(*got) != 1 || (*got)[0].keys != "{VK_RCONTROL down}c{VK_RCONTROL up}" {
		t.Errorf("captures = %+v", *got)
	}
}

func TestKeyboardAccumulator_Reset(t *testing.T) {
	k, got, _ := newTestAccumulator()
	k.Press([]string{"rcontrol"})
	k.Press([]string{"a"})
	k.Reset()
	k.Press([]string{"b"})
	if open, _, keys := k.State(); open || keys != "" {
		t.Errorf("state after reset: open=%v keys=%q", open, keys)
	}
	if len(*got) != 0 {
		t.Errorf("unexpected captures %+v", *got)
	}
}
