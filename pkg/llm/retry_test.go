package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type scriptedProvider struct {
	errs  []error // consumed one per call; nil means success
	calls int
}

func (p *scriptedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	var err error
	if p.calls < len(p.errs) {
		err = p.errs[p.calls]
	}
	p.calls++
	if err != nil {
		return "", err
	}
	return "ok", nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return p.Chat(ctx, []Message{{Role: "user", Content: prompt}})
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	inner := &scriptedProvider{errs: []error{
		&HTTPError{Status: http.StatusTooManyRequests},
		&HTTPError{Status: http.StatusBadGateway},
		nil,
	}}
	p := WithRetry(inner, fastPolicy())

	reply, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "ok" {
		t.Errorf("reply = %q", reply)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryStopsOnPermanentFailure(t *testing.T) {
	inner := &scriptedProvider{errs: []error{
		&HTTPError{Status: http.StatusUnauthorized},
	}}
	p := WithRetry(inner, fastPolicy())

	if _, err := p.Chat(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 401)", inner.calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	inner := &scriptedProvider{errs: []error{
		&HTTPError{Status: http.StatusServiceUnavailable},
		&HTTPError{Status: http.StatusServiceUnavailable},
		&HTTPError{Status: http.StatusServiceUnavailable},
	}}
	p := WithRetry(inner, fastPolicy())

	_, err := p.Chat(context.Background(), nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusServiceUnavailable {
		t.Errorf("err = %v, want the last provider error", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &scriptedProvider{errs: []error{ctx.Err()}}
	p := WithRetry(inner, fastPolicy())

	if _, err := p.Chat(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1 (cancellation is not transient)", inner.calls)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &HTTPError{Status: 429}, true},
		{"server error", &HTTPError{Status: 500}, true},
		{"gateway timeout", &HTTPError{Status: 504}, true},
		{"bad request", &HTTPError{Status: 400}, false},
		{"unauthorized", &HTTPError{Status: 401}, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"plain transport error", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
