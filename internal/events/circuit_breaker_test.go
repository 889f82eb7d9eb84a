package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPublisher struct {
	err   error
	calls int
}

func (p *scriptedPublisher) Publish(ctx context.Context, event TransactionEvent) error {
	p.calls++
	return p.err
}

func (p *scriptedPublisher) Close() error {
	return nil
}

func newTestBreaker(next Publisher, clock *time.Time) *BreakerPublisher {
	breaker := NewBreakerPublisher(next, BreakerConfig{
		MaxFailures:     2,
		ResetTimeout:    time.Minute,
		HalfOpenMaxSucc: 2,
	}, nil)
	breaker.now = func() time.Time { return *clock }
	return breaker
}

func TestBreakerPublisher_OpensAfterConsecutiveFailures(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &scriptedPublisher{err: errors.New("broker down")}
	breaker := newTestBreaker(next, &clock)
	ctx := context.Background()

	assert.Error(t, breaker.Publish(ctx, TransactionEvent{}))
	assert.Equal(t, BreakerClosed, breaker.State())
	assert.Error(t, breaker.Publish(ctx, TransactionEvent{}))
	assert.Equal(t, BreakerOpen, breaker.State())

	assert.Equal(t, ErrCircuitOpen, breaker.Publish(ctx, TransactionEvent{}))
	assert.Equal(t, 2, next.calls)
}

func TestBreakerPublisher_SuccessResetsFailureCount(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &scriptedPublisher{err: errors.New("broker down")}
	breaker := newTestBreaker(next, &clock)
	ctx := context.Background()

	assert.Error(t, breaker.Publish(ctx, TransactionEvent{}))
	next.err = nil
	assert.NoError(t, breaker.Publish(ctx, TransactionEvent{}))
	next.err = errors.New("broker down")
	assert.Error(t, breaker.Publish(ctx, TransactionEvent{}))

	assert.Equal(t, BreakerClosed, breaker.State())
}

func TestBreakerPublisher_HalfOpenRecovery(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &scriptedPublisher{err: errors.New("broker down")}
	breaker := newTestBreaker(next, &clock)
	ctx := context.Background()

	_ = breaker.Publish(ctx, TransactionEvent{})
	_ = breaker.Publish(ctx, TransactionEvent{})
	require.Equal(t, BreakerOpen, breaker.State())

	clock = clock.Add(2 * time.Minute)
	next.err = nil

	require.NoError(t, breaker.Publish(ctx, TransactionEvent{}))
	assert.Equal(t, BreakerHalfOpen, breaker.State())
	require.NoError(t, breaker.Publish(ctx, TransactionEvent{}))
	assert.Equal(t, BreakerClosed, breaker.State())
}

func TestBreakerPublisher_HalfOpenFailureReopens(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &scriptedPublisher{err: errors.New("broker down")}
	breaker := newTestBreaker(next, &clock)
	ctx := context.Background()

	_ = breaker.Publish(ctx, TransactionEvent{})
	_ = breaker.Publish(ctx, TransactionEvent{})
	clock = clock.Add(2 * time.Minute)

	assert.Error(t, breaker.Publish(ctx, TransactionEvent{}))
	assert.Equal(t, BreakerOpen, breaker.State())
	assert.Equal(t, ErrCircuitOpen, breaker.Publish(ctx, TransactionEvent{}))
}

func TestBreakerState_String(t *testing.T) {
	assert.Equal(t, "closed", BreakerClosed.String())
	assert.Equal(t, "open", BreakerOpen.String())
	assert.Equal(t, "half_open", BreakerHalfOpen.String())
}
