package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	breakerMaxFailures uint32 = 5
	breakerTimeout            = 30 * time.Second
	breakerInterval           = 60 * time.Second
)

// BreakerProvider wraps a Provider with circuit breaker protection. When
// the wrapped provider fails repeatedly, the circuit opens and subsequent
// calls fail fast without reaching the provider, which keeps a provider
// outage from stalling an entire simulated week on timeouts.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[*CompletionResponse]
}

// NewBreakerProvider wraps inner with a circuit breaker.
func NewBreakerProvider(inner Provider, logger *zap.Logger) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker[*CompletionResponse](gobreaker.Settings{
		Name:        "llm:" + inner.Name(),
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &BreakerProvider{inner: inner, breaker: cb}
}

func (p *BreakerProvider) Name() string {
	return p.inner.Name()
}

func (p *BreakerProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	resp, err := p.breaker.Execute(func() (*CompletionResponse, error) {
		return p.inner.Complete(ctx, req)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("provider %q circuit open: %w", p.inner.Name(), err)
		}
		return nil, err
	}
	return resp, nil
}

// State returns the current circuit breaker state for monitoring.
func (p *BreakerProvider) State() gobreaker.State {
	return p.breaker.State()
}
