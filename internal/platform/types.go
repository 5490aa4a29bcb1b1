package platform

import (
	"fmt"

	"github.com/mj1618/uiarec/internal/model"
)

// Bounds represents a screen rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

func (b Bounds) String() string {
	return fmt.Sprintf("%d,%d %dx%d", b.X, b.Y, b.Width, b.Height)
}

// Empty reports whether the rectangle has no area.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Highlight selects the outline colour.
type Highlight int

const (
	// HighlightTentative marks an element still settling under the pointer.
	HighlightTentative Highlight = iota
	// HighlightConfirmed marks an element whose path has been committed.
	HighlightConfirmed
)

func (h Highlight) String() string {
	if h == HighlightConfirmed {
		return "confirmed"
	}
	return "tentative"
}

// EventKind is the kind of a raw input event.
type EventKind int

const (
	EventMouseDown EventKind = iota
	EventKeyDown
)

// InputEvent is one raw input event.
type InputEvent struct {
	Kind EventKind
	// Button is set for EventMouseDown.
	Button model.MouseButton
	// Keys is the chord for EventKeyDown: held modifiers in press order
	// followed by the key itself, lowercased key names (e.g. "lshift", "a").
	Keys []string
}

// MouseDown returns a mouse-down event for button.
func MouseDown(button model.MouseButton) InputEvent {
	return InputEvent{Kind: EventMouseDown, Button: button}
}

// KeyDown returns a key-down event for a chord.
func KeyDown(keys ...string) InputEvent {
	return InputEvent{Kind: EventKeyDown, Keys: keys}
}
