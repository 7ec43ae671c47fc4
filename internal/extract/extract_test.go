package extract

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/llm"
	"github.com/elyxhealth/careteam/internal/team"
)

// cannedProvider returns a fixed content string and counts calls.
type cannedProvider struct {
	mu      sync.Mutex
	content string
	err     error
	calls   int
}

func (p *cannedProvider) Name() string { return "canned" }

func (p *cannedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.content}, nil
}

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
	}{
		{"plain object", `{"a": 1}`, true},
		{"wrapped in prose", "Sure! Here you go:\n{\"a\": 1}\nHope that helps.", true},
		{"markdown fenced", "```json\n{\"a\": 1}\n```", true},
		{"nested braces", `prefix {"a": {"b": 2}} suffix`, true},
		{"brace inside string", `{"a": "closing } inside"}`, true},
		{"no object", "no json here", false},
		{"unbalanced", `{"a": 1`, false},
		{"bare null", "null", false},
		{"bare array", `[1, 2]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v map[string]any
			if got := DecodeObject(tt.input, &v); got != tt.wantOK {
				t.Errorf("DecodeObject(%q) = %v, want %v", tt.input, got, tt.wantOK)
			}
		})
	}
}

func TestExtractCoercesTypes(t *testing.T) {
	// Model returned wrong types for several fields.
	provider := &cannedProvider{content: `{
		"summary": "sleep question",
		"intent": "performance",
		"entities": "not a mapping",
		"keywords": "not a list",
		"confidence": 0.9,
		"is_health_issue": "yes",
		"recommended_specialists": ["performance", 42]
	}`}
	e := New(provider, "m", zap.NewNop())

	r := e.Extract(context.Background(), "how does sleep affect glucose?", nil)
	if r.Summary != "sleep question" {
		t.Errorf("summary = %q", r.Summary)
	}
	if r.Intent != IntentPerformance {
		t.Errorf("intent = %q", r.Intent)
	}
	if len(r.Entities) != 0 {
		t.Errorf("expected coerced empty entities, got %v", r.Entities)
	}
	if len(r.Keywords) != 0 {
		t.Errorf("expected coerced empty keywords, got %v", r.Keywords)
	}
	if r.IsHealthIssue {
		t.Error("non-bool is_health_issue should coerce to false")
	}
	if len(r.RecommendedSpecialists) != 1 || r.RecommendedSpecialists[0] != "performance" {
		t.Errorf("recommended = %v", r.RecommendedSpecialists)
	}
}

func TestExtractIssueImprovementMutualExclusion(t *testing.T) {
	provider := &cannedProvider{content: `{
		"summary": "knee pain mostly gone",
		"intent": "physio",
		"confidence": 0.8,
		"is_health_issue": true,
		"health_issue": {"title": "Knee pain", "category": "physio", "severity": "low"},
		"is_improvement": true,
		"improvement": {"title": "Pain subsiding"}
	}`}
	e := New(provider, "m", zap.NewNop())

	r := e.Extract(context.Background(), "my knee hurts less but still twinges", nil)
	if !r.IsHealthIssue {
		t.Error("expected is_health_issue to win the conflict")
	}
	if r.IsImprovement {
		t.Error("expected is_improvement forced false")
	}
}

func TestExtractDegradesOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		provider *cannedProvider
	}{
		{"provider error", &cannedProvider{err: fmt.Errorf("upstream down")}},
		{"garbage output", &cannedProvider{content: "I am not JSON at all"}},
		{"bare null reply", &cannedProvider{content: "null"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.provider, "m", zap.NewNop())
			r := e.Extract(context.Background(), "hello", nil)
			if !r.Empty() {
				t.Errorf("expected empty result, got %+v", r)
			}
			if r.Intent != IntentOther {
				t.Errorf("expected intent other, got %q", r.Intent)
			}
		})
	}
}

func TestExtractMemoizes(t *testing.T) {
	provider := &cannedProvider{content: `{"summary": "s", "intent": "other", "confidence": 0.5}`}
	e := New(provider, "m", zap.NewNop())
	msgCtx := map[string]any{"week": 3}

	e.Extract(context.Background(), "same message", msgCtx)
	e.Extract(context.Background(), "same message", msgCtx)
	if provider.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.calls)
	}

	// Different context is a different key.
	e.Extract(context.Background(), "same message", map[string]any{"week": 4})
	if provider.calls != 2 {
		t.Errorf("expected 2 provider calls, got %d", provider.calls)
	}
}

func TestCacheEvictsAtLimit(t *testing.T) {
	c := newResultCache()
	for i := 0; i < cacheLimit+10; i++ {
		c.put(fmt.Sprintf("key-%d", i), Result{})
	}
	if c.len() > cacheLimit {
		t.Errorf("cache grew past limit: %d", c.len())
	}
}

func TestExtractConcurrent(t *testing.T) {
	provider := &cannedProvider{content: `{"summary": "s", "intent": "other", "confidence": 0.5}`}
	e := New(provider, "m", zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Half the goroutines share a key, half write distinct ones.
			msg := fmt.Sprintf("message %d", i%8)
			for j := 0; j < 20; j++ {
				r := e.Extract(context.Background(), msg, nil)
				if r.Intent != IntentOther {
					t.Errorf("intent = %q", r.Intent)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestIssueOwnerDerivation(t *testing.T) {
	tests := []struct {
		name     string
		category string
		fallback team.ID
		want     team.ID
	}{
		{"physio category", "physio", team.Performance, team.Physio},
		{"medical category", "medical", "", team.Medical},
		{"unknown category uses fallback", "other", team.Performance, team.Performance},
		{"unknown category no fallback", "other", "", team.Coordinator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Result{
				IsHealthIssue: true,
				Confidence:    0.7,
				HealthIssue:   &RawIssue{Title: "T", Category: tt.category},
			}
			issue := r.Issue(tt.fallback)
			if issue == nil {
				t.Fatal("expected issue")
			}
			if issue.SuggestedOwner != tt.want {
				t.Errorf("owner = %q, want %q", issue.SuggestedOwner, tt.want)
			}
			if issue.Severity != "medium" {
				t.Errorf("expected default severity medium, got %q", issue.Severity)
			}
		})
	}

	// No issue flagged means no HealthIssue.
	if issue := (Result{}).Issue(team.Coordinator); issue != nil {
		t.Errorf("expected nil issue, got %+v", issue)
	}
}
