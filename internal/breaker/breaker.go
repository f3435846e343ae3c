// Package breaker adapts the pack's Closed/Open/HalfOpen circuit
// breaker into a guard for the optional telemetry sinks: after
// MaxFailures consecutive publish failures it fast-fails for
// ResetTimeout instead of letting a dead broker slow down every run.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State is the breaker's current disposition.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// ErrOpen is returned by Execute while the breaker is fast-failing.
var ErrOpen = errors.New("breaker: open, fast-fail")

// Config tunes the breaker.
type Config struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

// Breaker guards a single named operation.
type Breaker struct {
	name string
	cfg  Config
	log  *slog.Logger

	mu       sync.Mutex
	state    State
	fails    int
	openedAt time.Time
}

// New builds a Breaker in the Closed state.
func New(name string, cfg Config, log *slog.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	return &Breaker{name: name, cfg: cfg, log: log, state: Closed}
}

// Execute runs op, tracking failures and tripping the breaker after
// cfg.MaxFailures consecutive errors.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	state := b.state
	openedAt := b.openedAt
	b.mu.Unlock()

	if state == Open {
		if time.Since(openedAt) < b.cfg.ResetTimeout {
			b.log.Warn("breaker fast-fail", "name", b.name, "since_open", time.Since(openedAt).String())
			return ErrOpen
		}
		b.mu.Lock()
		b.state = HalfOpen
		b.mu.Unlock()
	}

	err := op(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		if b.state != Closed {
			b.log.Info("breaker closed", "name", b.name)
		}
		b.state = Closed
		b.fails = 0
		return nil
	}

	b.fails++
	b.log.Warn("breaker op failed", "name", b.name, "fails", b.fails, "err", err.Error())
	if b.fails >= b.cfg.MaxFailures {
		b.state = Open
		b.openedAt = time.Now()
		b.log.Error("breaker opened", "name", b.name, "maxFailures", b.cfg.MaxFailures)
	}
	return err
}

// State reports the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
