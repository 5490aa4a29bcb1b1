package recorder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/platform"
)

func rect(x, y, w, h int) platform.Bounds {
	return platform.Bounds{X: x, Y: y, Width: w, Height: h}
}

type fakeElement struct {
	snap     model.Snapshot
	bounds   platform.Bounds
	parent   *fakeElement
	children []*fakeElement
}

func (e *fakeElement) Snapshot() (model.Snapshot, error) { return e.snap, nil }
func (e *fakeElement) Bounds() (platform.Bounds, error)  { return e.bounds, nil }

func (e *fakeElement) Parent() (platform.Element, error) {
	if e.parent == nil {
		return nil, nil
	}
	return e.parent, nil
}

func (e *fakeElement) Children() ([]platform.Element, error) {
	out := make([]platform.Element, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out, nil
}

func (e *fakeElement) add(c *fakeElement) *fakeElement {
	c.parent = e
	e.children = append(e.children, c)
	return c
}

// fakeTree is a desktop with one window holding an OK button, two identical
// Item buttons and a Cancel button.
type fakeTree struct {
	desktop, window, ok, item1, item2, cancel *fakeElement
}

func newFakeTree() *fakeTree {
	t := &fakeTree{}
	t.desktop = &fakeElement{snap: model.Snapshot{Title: "Desktop 1", ControlType: "Pane", Handle: 1}, bounds: rect(0, 0, 1920, 1080)}
	t.window = t.desktop.add(&fakeElement{snap: model.Snapshot{Title: "App", ControlType: "Window", ClassName: "AppWindow", Handle: 2}, bounds: rect(100, 100, 800, 600)})
	t.ok = t.window.add(&fakeElement{snap: model.Snapshot{Title: "OK", ControlType: "Button", Handle: 3}, bounds: rect(110, 110, 80, 20)})
	t.item1 = t.window.add(&fakeElement{snap: model.Snapshot{Title: "Item", ControlType: "Button", Handle: 4}, bounds: rect(110, 140, 80, 20)})
	t.item2 = t.window.add(&fakeElement{snap: model.Snapshot{Title: "Item", ControlType: "Button", Handle: 5}, bounds: rect(110, 170, 80, 20)})
	t.cancel = t.window.add(&fakeElement{snap: model.Snapshot{Title: "Cancel", ControlType: "Button", Handle: 6}, bounds: rect(200, 110, 80, 20)})
	return t
}

// seqResolver returns its elements in order, repeating the last one.
type seqResolver struct {
	mu    sync.Mutex
	steps []platform.Element
	errs  []error
	i     int
}

func (r *seqResolver) ElementAtCursor() (platform.Element, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.i
	if i >= len(r.steps) {
		i = len(r.steps) - 1
	} else {
		r.i++
	}
	if i < len(r.errs) && r.errs[i] != nil {
		return nil, r.errs[i]
	}
	return r.steps[i], nil
}

// staticResolver always returns the same element.
type staticResolver struct{ el platform.Element }

func (r staticResolver) ElementAtCursor() (platform.Element, error) {
	if r.el == nil {
		return nil, platform.ErrNoElement
	}
	return r.el, nil
}

type outlineCall struct {
	bounds    platform.Bounds
	highlight platform.Highlight
}

type recordingOutliner struct {
	mu    sync.Mutex
	calls []outlineCall
}

func (o *recordingOutliner) Outline(b platform.Bounds, h platform.Highlight) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, outlineCall{b, h})
	return nil
}

// chanSource delivers events pushed on its channel.
type chanSource struct {
	events chan platform.InputEvent
}

func newChanSource() *chanSource {
	return &chanSource{events: make(chan platform.InputEvent, 16)}
}

func (s *chanSource) Run(ctx context.Context, handle func(platform.InputEvent)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-s.events:
			handle(e)
		}
	}
}

// stuckSource ignores cancellation until released.
type stuckSource struct {
	release chan struct{}
}

func (s *stuckSource) Run(ctx context.Context, handle func(platform.InputEvent)) error {
	<-s.release
	return errors.New("released")
}

type fakeTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *fakeTimer) fire() {
	if t.stopped || t.fired {
		return
	}
	t.fired = true
	t.f()
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) Timer {
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}
