//go:build windows && (amd64 || arm64)

package windows

import (
	"testing"

	"github.com/mj1618/uiarec/internal/platform"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		vk   uint32
		want string
	}{
		{'A', "a"},
		{'Z', "z"},
		{'7', "7"},
		{0x0D, "return"},
		{0x08, "back"},
		{0xA3, "rcontrol"},
		{0xA0, "lshift"},
		{0x70, "f1"},
		{0x7B, "f12"},
		{0x63, "numpad3"},
		{0xBB, "="},
		{0xE7, ""},
	}
	for _, tt := range tests {
		if got := keyName(tt.vk); got != tt.want {
			t.Errorf("keyName(%#x) = %q, want %q", tt.vk, got, tt.want)
		}
	}
}

func TestHookSession_Chords(t *testing.T) {
	var got [][]string
	h := &hookSession{handle: func(e platform.InputEvent) { got = append(got, e.Keys) }}
	h.keyDown(0xA0) // lshift
	h.keyDown(0xA0) // auto-repeat
	h.keyDown('A')
	h.keyUp(0xA0)
	h.keyDown('B')
	h.keyDown(0xA3)

	want := [][]string{{"lshift"}, {"lshift", "a"}, {"b"}, {"rcontrol"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("chord %d = %v, want %v", i, got[i], want[i])
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("chord %d = %v, want %v", i, got[i], want[i])
			}
		}
	}
}
