package respond

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/llm"
	"github.com/elyxhealth/careteam/internal/team"
)

type seqProvider struct {
	replies []string
	err     error
	reqs    []llm.CompletionRequest
}

func (p *seqProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.reqs = append(p.reqs, req)
	if p.err != nil {
		return nil, p.err
	}
	i := len(p.reqs) - 1
	if i >= len(p.replies) {
		i = len(p.replies) - 1
	}
	return &llm.CompletionResponse{Content: p.replies[i]}, nil
}

func (p *seqProvider) Name() string { return "seq" }

func physioSpec(t *testing.T) team.Specialist {
	t.Helper()
	spec, ok := team.Get(team.Physio)
	if !ok {
		t.Fatal("physio not registered")
	}
	return spec
}

func userTurn(text string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: "system"},
		{Role: llm.RoleUser, Content: text},
	}
}

func TestRespondPlain(t *testing.T) {
	p := &seqProvider{replies: []string{"  Try box squats.  "}}
	r := New(p, "m", 0.7, zap.NewNop())
	got, err := r.Respond(context.Background(), physioSpec(t), userTurn("knee pain"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Try box squats." {
		t.Fatalf("got %q", got)
	}
	if p.reqs[0].Speaker != "Rachel - Physiotherapist" {
		t.Fatalf("speaker = %q", p.reqs[0].Speaker)
	}
	if p.reqs[0].JSONMode {
		t.Fatal("plain respond must not request JSON mode")
	}
	h := r.History()
	if len(h) != 1 || h[0].Response != "Try box squats." {
		t.Fatalf("history = %+v", h)
	}
}

func TestRespondPropagatesProviderError(t *testing.T) {
	p := &seqProvider{err: errors.New("model unavailable")}
	r := New(p, "m", 0.7, zap.NewNop())
	if _, err := r.Respond(context.Background(), physioSpec(t), userTurn("hi")); err == nil {
		t.Fatal("expected error")
	}
	h := r.History()
	if len(h) != 1 || h[0].Err == "" {
		t.Fatalf("history = %+v", h)
	}
}

func TestRespondStructuredCanonicalizes(t *testing.T) {
	p := &seqProvider{replies: []string{"Sure! {\"plan\": \"deload\",\n\"days\": 3} hope that helps"}}
	r := New(p, "m", 0.7, zap.NewNop())
	got, err := r.RespondStructured(context.Background(), physioSpec(t), userTurn("plan?"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"days":3,"plan":"deload"}` {
		t.Fatalf("got %q", got)
	}
	if !p.reqs[0].JSONMode {
		t.Fatal("expected JSON mode request")
	}
}

func TestRespondStructuredRetriesWithCorrection(t *testing.T) {
	p := &seqProvider{replies: []string{"not json at all", `{"ok": true}`}}
	r := New(p, "m", 0.7, zap.NewNop())
	got, err := r.RespondStructured(context.Background(), physioSpec(t), userTurn("plan?"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"ok":true}` {
		t.Fatalf("got %q", got)
	}
	if len(p.reqs) != 2 {
		t.Fatalf("attempts = %d", len(p.reqs))
	}
	second := p.reqs[1].Messages
	note := second[len(second)-1]
	if note.Role != llm.RoleSystem || !strings.Contains(note.Content, "rejected") {
		t.Fatalf("corrective note = %+v", note)
	}
}

func TestRespondStructuredSentinelAfterExhaustion(t *testing.T) {
	p := &seqProvider{replies: []string{"garbage"}}
	r := New(p, "m", 0.7, zap.NewNop())
	got, err := r.RespondStructured(context.Background(), physioSpec(t), userTurn("plan?"), nil)
	if err != nil {
		t.Fatalf("must not error on malformed output: %v", err)
	}
	if got != FailureSentinel {
		t.Fatalf("got %q", got)
	}
	if len(p.reqs) != structuredAttempts {
		t.Fatalf("attempts = %d, want %d", len(p.reqs), structuredAttempts)
	}
	h := r.History()
	last := h[len(h)-1]
	if last.Response != FailureSentinel || last.Err == "" {
		t.Fatalf("history tail = %+v", last)
	}
}

func TestRespondStructuredSchemaValidation(t *testing.T) {
	schema, err := CompileSchema([]byte(`{
		"type": "object",
		"required": ["plan"],
		"properties": {"plan": {"type": "string"}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	p := &seqProvider{replies: []string{`{"other": 1}`, `{"plan": "deload"}`}}
	r := New(p, "m", 0.7, zap.NewNop())
	got, gotErr := r.RespondStructured(context.Background(), physioSpec(t), userTurn("plan?"), schema)
	if gotErr != nil {
		t.Fatal(gotErr)
	}
	if got != `{"plan":"deload"}` {
		t.Fatalf("got %q", got)
	}
	if len(p.reqs) != 2 {
		t.Fatalf("attempts = %d", len(p.reqs))
	}
}
