package recorder

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/platform"
)

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Recorder) { r.log = log }
}

// WithAfterFunc replaces the click debouncer's timer source.
func WithAfterFunc(f AfterFunc) Option {
	return func(r *Recorder) { r.afterFunc = f }
}

// WithOnConfirm observes every path the scanner commits.
func WithOnConfirm(f func(model.Path)) Option {
	return func(r *Recorder) { r.onConfirm = f }
}

// Recorder owns a scanner and an input hook and queues the actions they
// produce for an editor to drain.
type Recorder struct {
	log       *slog.Logger
	afterFunc AfterFunc
	onConfirm func(model.Path)

	scanner *Scanner
	clicks  *ClickDebouncer
	keys    *KeyboardAccumulator
	hook    *InputHook

	queue atomic.Pointer[Queue]

	mu      sync.Mutex
	running bool
}

// New wires a recorder to the platform provider.
func New(p *platform.Provider, cfg Config, opts ...Option) (*Recorder, error) {
	if p == nil || p.Resolver == nil || p.Input == nil {
		return nil, errors.New("recorder: provider needs a resolver and an input source")
	}
	cfg = cfg.withDefaults()
	r := &Recorder{log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	r.scanner = NewScanner(p.Resolver, p.Outliner, cfg, r.log)
	r.scanner.OnConfirm = r.onConfirm
	r.clicks = NewClickDebouncer(cfg.DoubleClickWindow, r.scanner.CurrentPath, r.onClick, r.afterFunc)
	r.keys = NewKeyboardAccumulator(cfg.CommitKey, r.scanner.CurrentPath, r.onKeys)
	r.hook = NewInputHook(p.Input, r.clicks, r.keys, cfg.JoinTimeout, r.log)
	r.queue.Store(NewQueue())
	return r, nil
}

// Start begins recording with a fresh queue. It is a no-op while running.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}
	r.queue.Store(NewQueue())
	r.keys.Reset()
	r.scanner.Start()
	r.hook.Start()
	r.running = true
	r.log.Info("recorder started")
	return nil
}

// Stop ends recording. It is a no-op when not running. Queued actions stay
// available to TryPop.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.hook.Stop()
	r.clicks.Flush()
	r.scanner.Stop()
	r.running = false
	r.log.Info("recorder stopped")
}

// Running reports whether the recorder is started.
func (r *Recorder) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// TryPop returns the oldest recorded action without blocking.
func (r *Recorder) TryPop() (model.Action, bool) {
	return r.queue.Load().TryPop()
}

// CurrentPath returns the scanner's last committed path.
func (r *Recorder) CurrentPath() model.Path {
	return r.scanner.CurrentPath()
}

// KeyboardState reports an open keyboard capture: the element keys will be
// sent to and what has been typed so far.
func (r *Recorder) KeyboardState() (open bool, target model.Path, keys string) {
	return r.keys.State()
}

func (r *Recorder) onClick(button model.MouseButton, double bool, target model.Path) {
	if target.IsEmpty() {
		r.log.Warn("click recorded without a resolved element", slog.String("button", string(button)))
	}
	a := model.NewClickAction(target.Renew(), button, double)
	r.log.Debug("action recorded", slog.String("action", a.Describe()))
	r.queue.Load().Push(a)
}

func (r *Recorder) onKeys(target model.Path, keys string) {
	if target.IsEmpty() {
		r.log.Warn("keyboard input recorded without a resolved element", slog.String("keys", keys))
	}
	a := model.NewKeyboardAction(target.Renew(), keys)
	r.log.Debug("action recorded", slog.String("action", a.Describe()))
	r.queue.Load().Push(a)
}
