package recorder

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/platform"
)

// Scanner polls the element under the pointer and publishes its path once
// the pointer has rested on the same rectangle for StableTicks ticks.
type Scanner struct {
	resolver    platform.Resolver
	outliner    platform.Outliner
	interval    time.Duration
	stableTicks int
	joinTimeout time.Duration
	log         *slog.Logger

	// OnConfirm, if set before Start, is called on the scan goroutine with
	// every committed path.
	OnConfirm func(model.Path)

	current atomic.Pointer[model.Path]

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// scanState is owned by a single scan loop.
type scanState struct {
	bounds platform.Bounds
	seen   bool
	count  int
}

// NewScanner creates a stopped scanner. outliner may be nil.
func NewScanner(resolver platform.Resolver, outliner platform.Outliner, cfg Config, log *slog.Logger) *Scanner {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	s := &Scanner{
		resolver:    resolver,
		outliner:    outliner,
		interval:    cfg.ScanInterval,
		stableTicks: cfg.StableTicks,
		joinTimeout: cfg.JoinTimeout,
		log:         log,
	}
	s.current.Store(&model.Path{})
	return s
}

// CurrentPath returns the last committed path without blocking. The result
// is empty until a path has been committed or after a resolution failure.
func (s *Scanner) CurrentPath() model.Path {
	return *s.current.Load()
}

// Start begins polling. A running scanner is stopped first.
func (s *Scanner) Start() {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
}

// Stop signals the loop and waits up to the join timeout. A loop that does
// not exit in time, for example one blocked inside an accessibility call, is
// abandoned. Stop is safe to call on a scanner that never started.
func (s *Scanner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	if !join(done, s.joinTimeout) {
		s.log.Warn("scanner did not stop in time; abandoning loop", slog.Duration("timeout", s.joinTimeout))
	}
}

func (s *Scanner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	var st scanState
	for {
		s.tick(&st)
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (s *Scanner) tick(st *scanState) {
	el, err := s.resolver.ElementAtCursor()
	if err != nil {
		s.fail(st, "resolve element under cursor", err)
		return
	}
	bounds, err := el.Bounds()
	if err != nil {
		s.fail(st, "read element bounds", err)
		return
	}
	if !st.seen || bounds != st.bounds {
		st.bounds, st.seen, st.count = bounds, true, 0
	}
	st.count++

	switch {
	case st.count < s.stableTicks:
		s.outline(bounds, platform.HighlightTentative)
	case st.count == s.stableTicks:
		path, err := BuildPath(el)
		if err != nil {
			s.fail(st, "build element path", err)
			return
		}
		s.current.Store(&path)
		s.outline(bounds, platform.HighlightConfirmed)
		s.log.Debug("element confirmed", slog.String("path", path.String()))
		if s.OnConfirm != nil {
			s.OnConfirm(path)
		}
	default:
		s.outline(bounds, platform.HighlightConfirmed)
	}
}

func (s *Scanner) fail(st *scanState, what string, err error) {
	*st = scanState{}
	s.current.Store(&model.Path{})
	if errors.Is(err, platform.ErrNoElement) {
		return
	}
	s.log.Debug(what+" failed", slog.String("error", err.Error()))
}

func (s *Scanner) outline(b platform.Bounds, h platform.Highlight) {
	if s.outliner == nil || b.Empty() {
		return
	}
	if err := s.outliner.Outline(b, h); err != nil {
		s.log.Debug("outline failed", slog.String("error", err.Error()))
	}
}
