package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/platform"
)

// InputHook runs an input source on its own goroutine and routes its events
// to the click debouncer and keyboard accumulator.
type InputHook struct {
	source      platform.InputSource
	clicks      *ClickDebouncer
	keys        *KeyboardAccumulator
	joinTimeout time.Duration
	log         *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewInputHook(source platform.InputSource, clicks *ClickDebouncer, keys *KeyboardAccumulator, joinTimeout time.Duration, log *slog.Logger) *InputHook {
	if log == nil {
		log = slog.Default()
	}
	return &InputHook{source: source, clicks: clicks, keys: keys, joinTimeout: joinTimeout, log: log}
}

// Start begins delivering events. A running hook is stopped first.
func (h *InputHook) Start() {
	h.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	h.mu.Lock()
	h.cancel, h.done = cancel, done
	h.mu.Unlock()

	go func() {
		defer close(done)
		if err := h.source.Run(ctx, h.dispatch); err != nil && ctx.Err() == nil {
			h.log.Error("input hook stopped", slog.String("error", err.Error()))
		}
	}()
}

// Stop cancels the source and waits up to the join timeout. Safe to call
// when not started.
func (h *InputHook) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if !join(done, h.joinTimeout) {
		h.log.Warn("input hook did not stop in time; abandoning", slog.Duration("timeout", h.joinTimeout))
	}
}

func (h *InputHook) dispatch(e platform.InputEvent) {
	switch e.Kind {
	case platform.EventMouseDown:
		switch e.Button {
		case model.ButtonLeft:
			h.clicks.LeftDown()
		case model.ButtonRight:
			h.clicks.RightDown()
		}
	case platform.EventKeyDown:
		h.keys.Press(e.Keys)
	}
}
