package llm

import (
	"context"
	"time"
)

// RetryPolicy bounds how often a failed provider call is reattempted.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// RetryingProvider decorates an LLMProvider with bounded retry and
// exponential backoff for transient failures.
type RetryingProvider struct {
	inner  LLMProvider
	policy RetryPolicy
}

var _ LLMProvider = &RetryingProvider{}

func WithRetry(inner LLMProvider, policy RetryPolicy) *RetryingProvider {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetryingProvider{inner: inner, policy: policy}
}

func (r *RetryingProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		reply, err := r.inner.Chat(ctx, history, options...)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if !IsTransient(err) || attempt == r.policy.MaxAttempts {
			break
		}
		if err := r.wait(ctx, r.delayFor(attempt)); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (r *RetryingProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return r.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
}

func (r *RetryingProvider) delayFor(attempt int) time.Duration {
	delay := r.policy.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= r.policy.MaxDelay {
			return r.policy.MaxDelay
		}
	}
	return delay
}

func (r *RetryingProvider) wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
