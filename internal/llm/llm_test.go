package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// scriptedProvider returns queued responses/errors in order, then repeats
// the last entry.
type scriptedProvider struct {
	mu      sync.Mutex
	Calls   []CompletionRequest
	Results []scriptedResult
}

type scriptedResult struct {
	Resp *CompletionResponse
	Err  error
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, req)
	idx := len(s.Calls) - 1
	if idx >= len(s.Results) {
		idx = len(s.Results) - 1
	}
	r := s.Results[idx]
	return r.Resp, r.Err
}

func TestMockProviderEchoesLastUserTurn(t *testing.T) {
	mock := NewMockProvider("Rohan")

	resp, err := mock.Complete(context.Background(), CompletionRequest{
		Speaker: "Ruby - Concierge / Orchestrator",
		Messages: []Message{
			{Role: RoleSystem, Content: "system prompt"},
			{Role: RoleUser, Content: "first question"},
			{Role: RoleAssistant, Content: "an answer"},
			{Role: RoleUser, Content: "How should I adjust my plan?"},
		},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(resp.Content, "Ruby") {
		t.Errorf("expected speaker name in response, got %q", resp.Content)
	}
	if !strings.Contains(resp.Content, "How should I adjust my plan?") {
		t.Errorf("expected last user turn in response, got %q", resp.Content)
	}
}

func TestMockProviderTruncatesLongTurn(t *testing.T) {
	mock := NewMockProvider("")
	long := strings.Repeat("x", 500)

	resp, err := mock.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: long}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if strings.Contains(resp.Content, strings.Repeat("x", 161)) {
		t.Error("expected user turn truncated to 160 chars")
	}
	if !strings.Contains(resp.Content, strings.Repeat("x", 160)) {
		t.Error("expected first 160 chars of user turn present")
	}
}

func TestMockProviderTruncatesOnRuneBoundary(t *testing.T) {
	mock := NewMockProvider("")
	// Multi-byte runes straddle the 160-byte cut.
	long := strings.Repeat("健", 100)

	resp, err := mock.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: long}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !utf8.ValidString(resp.Content) {
		t.Errorf("truncated echo is not valid UTF-8: %q", resp.Content)
	}
}

func TestRetryProviderRetriesOn429(t *testing.T) {
	limited := NewAPIStatusError(http.StatusTooManyRequests, "slow down")
	scripted := &scriptedProvider{Results: []scriptedResult{
		{Err: limited},
		{Err: limited},
		{Resp: &CompletionResponse{Content: "ok"}},
	}}

	r := NewRetryProvider(scripted, zap.NewNop())
	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	resp, err := r.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("expected ok, got %q", resp.Content)
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Errorf("unexpected backoff schedule: %v", slept)
	}
}

func TestRetryProviderExhaustsAndPropagates(t *testing.T) {
	limited := NewAPIStatusError(http.StatusTooManyRequests, "slow down")
	scripted := &scriptedProvider{Results: []scriptedResult{{Err: limited}}}

	r := NewRetryProvider(scripted, zap.NewNop())
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_, err := r.Complete(context.Background(), CompletionRequest{})
	var statusErr *APIStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected APIStatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", statusErr.StatusCode)
	}
	// Initial call plus three retries.
	if len(scripted.Calls) != 4 {
		t.Errorf("expected 4 attempts, got %d", len(scripted.Calls))
	}
}

func TestRetryProviderDoesNotRetryFatalStatus(t *testing.T) {
	fatal := NewAPIStatusError(http.StatusInternalServerError, "boom")
	scripted := &scriptedProvider{Results: []scriptedResult{{Err: fatal}}}

	r := NewRetryProvider(scripted, zap.NewNop())
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_, err := r.Complete(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(scripted.Calls) != 1 {
		t.Errorf("expected 1 attempt for non-429 failure, got %d", len(scripted.Calls))
	}
}

func TestAPIStatusErrorTruncatesBody(t *testing.T) {
	err := NewAPIStatusError(500, strings.Repeat("b", 400))
	if len(err.Body) != 200 {
		t.Errorf("expected body truncated to 200 chars, got %d", len(err.Body))
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	scripted := &scriptedProvider{Results: []scriptedResult{
		{Err: errors.New("down")},
	}}
	b := NewBreakerProvider(scripted, zap.NewNop())

	for i := 0; i < int(breakerMaxFailures); i++ {
		if _, err := b.Complete(context.Background(), CompletionRequest{}); err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}

	calls := len(scripted.Calls)
	_, err := b.Complete(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatal("expected circuit-open error")
	}
	if len(scripted.Calls) != calls {
		t.Error("expected open circuit to fail fast without calling provider")
	}
}
