package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("event publisher circuit is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

type BreakerConfig struct {
	MaxFailures     int
	ResetTimeout    time.Duration
	HalfOpenMaxSucc int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:     5,
		ResetTimeout:    30 * time.Second,
		HalfOpenMaxSucc: 3,
	}
}

// BreakerPublisher stops calling the wrapped publisher after MaxFailures consecutive errors and
// fails fast with ErrCircuitOpen until ResetTimeout has passed.
type BreakerPublisher struct {
	next   Publisher
	config BreakerConfig
	logger *slog.Logger
	now    func() time.Time

	mu                sync.Mutex
	state             BreakerState
	failures          int
	halfOpenSuccesses int
	lastFailureTime   time.Time
}

func NewBreakerPublisher(next Publisher, config BreakerConfig, logger *slog.Logger) *BreakerPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakerPublisher{
		next:   next,
		config: config,
		logger: logger,
		now:    time.Now,
		state:  BreakerClosed,
	}
}

func (b *BreakerPublisher) Publish(ctx context.Context, event TransactionEvent) error {
	if !b.allow() {
		return ErrCircuitOpen
	}

	if err := b.next.Publish(ctx, event); err != nil {
		b.recordFailure()
		return err
	}

	b.recordSuccess()
	return nil
}

func (b *BreakerPublisher) Close() error {
	return b.next.Close()
}

func (b *BreakerPublisher) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *BreakerPublisher) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen && b.now().Sub(b.lastFailureTime) > b.config.ResetTimeout {
		b.transition(BreakerHalfOpen)
	}

	return b.state != BreakerOpen
}

func (b *BreakerPublisher) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerHalfOpen:
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.config.HalfOpenMaxSucc {
			b.transition(BreakerClosed)
		}
	case BreakerClosed:
		b.failures = 0
	}
}

func (b *BreakerPublisher) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailureTime = b.now()

	switch b.state {
	case BreakerHalfOpen:
		b.transition(BreakerOpen)
	case BreakerClosed:
		b.failures++
		if b.failures >= b.config.MaxFailures {
			b.transition(BreakerOpen)
		}
	}
}

// transition must be called with mu held.
func (b *BreakerPublisher) transition(to BreakerState) {
	if b.state == to {
		return
	}

	b.logger.Warn("event publisher circuit state change",
		slog.String("from", b.state.String()),
		slog.String("to", to.String()),
	)

	b.state = to
	b.failures = 0
	b.halfOpenSuccesses = 0
}
