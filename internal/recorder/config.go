// Package recorder turns live pointer and keyboard input into scenario
// actions aimed at the UI element under the pointer.
package recorder

import "time"

// Config tunes the recording pipeline.
type Config struct {
	// ScanInterval is the period between element lookups under the pointer.
	ScanInterval time.Duration
	// StableTicks is the number of consecutive ticks, including the first,
	// that the pointer must stay on one rectangle before its path is committed.
	StableTicks int
	// JoinTimeout bounds how long Stop waits for a background loop.
	JoinTimeout time.Duration
	// DoubleClickWindow is how long a left click waits for a second one.
	DoubleClickWindow time.Duration
	// CommitKey opens and closes a keyboard capture when pressed alone.
	CommitKey string
}

// DefaultConfig returns the stock recording parameters.
func DefaultConfig() Config {
	return Config{
		ScanInterval:      200 * time.Millisecond,
		StableTicks:       3,
		JoinTimeout:       2 * time.Second,
		DoubleClickWindow: 300 * time.Millisecond,
		CommitKey:         "rcontrol",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ScanInterval <= 0 {
		c.ScanInterval = d.ScanInterval
	}
	if c.StableTicks <= 0 {
		c.StableTicks = d.StableTicks
	}
	if c.JoinTimeout <= 0 {
		c.JoinTimeout = d.JoinTimeout
	}
	if c.DoubleClickWindow <= 0 {
		c.DoubleClickWindow = d.DoubleClickWindow
	}
	if c.CommitKey == "" {
		c.CommitKey = d.CommitKey
	}
	return c
}

// join waits for done up to timeout and reports whether it closed.
func join(done <-chan struct{}, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}
