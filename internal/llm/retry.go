package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// rateLimitBackoffs is the fixed backoff schedule applied after a 429.
var rateLimitBackoffs = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// RetryProvider wraps a Provider with rate-limit retries: an HTTP 429 is
// retried up to three more times on a fixed backoff schedule; every other
// failure aborts immediately. Retries are invisible to callers unless they
// exhaust, in which case the last status-carrying error is returned.
type RetryProvider struct {
	inner  Provider
	logger *zap.Logger

	// sleep is swappable in tests.
	sleep func(context.Context, time.Duration) error
}

// NewRetryProvider wraps the given provider with 429 retry handling.
func NewRetryProvider(inner Provider, logger *zap.Logger) *RetryProvider {
	return &RetryProvider{
		inner:  inner,
		logger: logger,
		sleep:  sleepCtx,
	}
}

func (r *RetryProvider) Name() string {
	return r.inner.Name()
}

func (r *RetryProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	resp, err := r.inner.Complete(ctx, req)
	if err == nil || !isRateLimited(err) {
		return resp, err
	}

	for _, delay := range rateLimitBackoffs {
		r.logger.Warn("completion rate limited, backing off",
			zap.Duration("delay", delay),
			zap.String("speaker", req.Speaker))
		if serr := r.sleep(ctx, delay); serr != nil {
			return nil, serr
		}
		resp, err = r.inner.Complete(ctx, req)
		if err == nil || !isRateLimited(err) {
			return resp, err
		}
	}
	return nil, err
}

func isRateLimited(err error) bool {
	var statusErr *APIStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
