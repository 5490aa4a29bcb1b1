package recorder

import (
	"sync"
	"time"

	"github.com/mj1618/uiarec/internal/model"
)

// Timer is the part of *time.Timer the debouncer uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ClickFunc receives a debounced click.
type ClickFunc func(button model.MouseButton, double bool, target model.Path)

// ClickDebouncer folds two left clicks inside the window into one double
// click. The target path is captured at the first press.
type ClickDebouncer struct {
	window    time.Duration
	afterFunc AfterFunc
	target    func() model.Path
	emit      ClickFunc

	mu      sync.Mutex
	pending *pendingClick
}

type pendingClick struct {
	target model.Path
	timer  Timer
	done   bool
}

// NewClickDebouncer creates a debouncer. target supplies the element path at
// press time; afterFunc may be nil to use real timers.
func NewClickDebouncer(window time.Duration, target func() model.Path, emit ClickFunc, afterFunc AfterFunc) *ClickDebouncer {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &ClickDebouncer{window: window, afterFunc: afterFunc, target: target, emit: emit}
}

// LeftDown handles a left button press.
func (d *ClickDebouncer) LeftDown() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p := d.pending; p != nil {
		d.pending = nil
		if !p.done {
			p.done = true
			p.timer.Stop()
			d.emit(model.ButtonLeft, true, p.target)
			return
		}
	}

	p := &pendingClick{target: d.target()}
	d.pending = p
	p.timer = d.afterFunc(d.window, func() { d.expire(p) })
}

func (d *ClickDebouncer) expire(p *pendingClick) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p.done {
		return
	}
	p.done = true
	if d.pending == p {
		d.pending = nil
	}
	d.emit(model.ButtonLeft, false, p.target)
}

// RightDown emits a right click immediately.
func (d *ClickDebouncer) RightDown() {
	d.emit(model.ButtonRight, false, d.target())
}

// Flush emits a pending single click now instead of waiting for the window
// to close.
func (d *ClickDebouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.pending
	if p == nil || p.done {
		return
	}
	p.done = true
	p.timer.Stop()
	d.pending = nil
	d.emit(model.ButtonLeft, false, p.target)
}
