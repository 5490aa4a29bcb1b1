package platform

import (
	"context"

	"github.com/mj1618/uiarec/internal/model"
)

// Element is a live UI element exposed by the accessibility layer.
type Element interface {
	// Snapshot reads the identifying properties. FoundIndex is left unset;
	// callers compute it from the parent's children.
	Snapshot() (model.Snapshot, error)
	Bounds() (Bounds, error)
	// Parent returns nil at the desktop root.
	Parent() (Element, error)
	Children() ([]Element, error)
}

// ElementComparer is implemented by elements that can tell whether another
// handle refers to the same live element. Without it, elements are told
// apart by their snapshots alone.
type ElementComparer interface {
	SameElement(other Element) bool
}

// Resolver finds the element under the pointer.
type Resolver interface {
	ElementAtCursor() (Element, error)
}

// Outliner draws a transient highlight around a screen rectangle.
type Outliner interface {
	Outline(b Bounds, h Highlight) error
}

// InputSource delivers global input events. Run blocks until ctx is done,
// calling handle synchronously on its own goroutine.
type InputSource interface {
	Run(ctx context.Context, handle func(InputEvent)) error
}

// InputSourceFunc adapts a function literal to the InputSource interface.
type InputSourceFunc func(ctx context.Context, handle func(InputEvent)) error

// Run calls the underlying function.
func (f InputSourceFunc) Run(ctx context.Context, handle func(InputEvent)) error {
	return f(ctx, handle)
}
