package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/extract"
	"github.com/elyxhealth/careteam/internal/llm"
	"github.com/elyxhealth/careteam/internal/team"
)

func newTestRouter(t *testing.T, maxAgents int) *Router {
	t.Helper()
	return New(nil, maxAgents, zap.NewNop())
}

func ids(d Decision) []team.ID { return d.Selected() }

func equalIDs(a, b []team.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlanSelection(t *testing.T) {
	tests := []struct {
		name    string
		message string
		res     extract.Result
		want    []team.ID
	}{
		{
			name:    "no recommendations falls back to coordinator",
			message: "hello there",
			res:     extract.Result{Intent: extract.IntentOther},
			want:    []team.ID{team.Coordinator},
		},
		{
			name:    "recommendations pass through when confident",
			message: "please weigh in on my quarterly plan",
			res: extract.Result{
				Intent:                 extract.IntentOther,
				Confidence:             0.92,
				Summary:                "quarterly plan review",
				RecommendedSpecialists: []string{"strategic-lead", "coordinator"},
			},
			want: []team.ID{team.StrategicLead, team.Coordinator},
		},
		{
			name:    "physio hint forces physio first and drops nutrition",
			message: "my knee hurts after the flight, should I change my meals too?",
			res: extract.Result{
				Intent:                 extract.IntentNutrition,
				Confidence:             0.9,
				Summary:                "knee pain and meal question",
				RecommendedSpecialists: []string{"nutrition", "coordinator"},
			},
			want: []team.ID{team.Physio, team.Coordinator},
		},
		{
			name:    "low confidence promotes intent specialist",
			message: "feeling a bit off after meetings",
			res: extract.Result{
				Intent:                 extract.IntentMedical,
				Confidence:             0.4,
				RecommendedSpecialists: []string{"coordinator"},
			},
			want: []team.ID{team.Medical, team.Coordinator},
		},
		{
			name:    "high confidence keeps extractor order over intent",
			message: "can you move my session to Thursday",
			res: extract.Result{
				Intent:                 extract.IntentPerformance,
				Confidence:             0.95,
				Summary:                "reschedule session",
				RecommendedSpecialists: []string{"coordinator"},
			},
			want: []team.ID{team.Coordinator},
		},
		{
			name:    "keyword hint overrides intent even at high confidence",
			message: "my glucose spiked after dinner",
			res: extract.Result{
				Intent:                 extract.IntentPerformance,
				Confidence:             0.95,
				Summary:                "glucose spike",
				RecommendedSpecialists: []string{"performance"},
			},
			want: []team.ID{team.Nutrition, team.Performance},
		},
		{
			name:    "nutrition intent evicts physio from plan",
			message: "what should I eat before morning sessions",
			res: extract.Result{
				Intent:                 extract.IntentNutrition,
				Confidence:             0.5,
				RecommendedSpecialists: []string{"physio", "nutrition"},
			},
			want: []team.ID{team.Nutrition},
		},
		{
			name:    "coordinator fallback when exclusion empties the plan",
			message: "my trainer flagged my squat form in our last session",
			res: extract.Result{
				Intent:                 extract.IntentPhysio,
				Confidence:             0.9,
				Summary:                "squat form concern",
				RecommendedSpecialists: []string{"nutrition"},
			},
			want: []team.ID{team.Coordinator},
		},
		{
			name:    "unknown and non-routable names are dropped",
			message: "just checking in",
			res: extract.Result{
				Intent:                 extract.IntentOther,
				Confidence:             0.9,
				Summary:                "check in",
				RecommendedSpecialists: []string{"Rohan", "astrologer", "Ruby"},
			},
			want: []team.ID{team.Coordinator},
		},
		{
			name:    "duplicates collapse",
			message: "sleep data review please",
			res: extract.Result{
				Intent:                 extract.IntentPerformance,
				Confidence:             0.9,
				Summary:                "sleep review",
				RecommendedSpecialists: []string{"performance", "Advik", "performance"},
			},
			want: []team.ID{team.Performance},
		},
	}
	r := newTestRouter(t, 2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.plan(tt.message, tt.res)
			if !equalIDs(ids(d), tt.want) {
				t.Fatalf("selected = %v, want %v", ids(d), tt.want)
			}
			if d.Primary != tt.want[0] {
				t.Fatalf("primary = %s, want %s", d.Primary, tt.want[0])
			}
		})
	}
}

func TestPlanTruncation(t *testing.T) {
	r := newTestRouter(t, 2)
	d := r.plan("team sync on everything", extract.Result{
		Intent:     extract.IntentOther,
		Confidence: 0.9,
		Summary:    "full team sync",
		RecommendedSpecialists: []string{
			"medical", "performance", "strategic-lead", "coordinator",
		},
	})
	if len(d.Plans) != 2 {
		t.Fatalf("plans = %d, want 2", len(d.Plans))
	}
	if !equalIDs(ids(d), []team.ID{team.Medical, team.Performance}) {
		t.Fatalf("selected = %v", ids(d))
	}
}

func TestPlanStrategies(t *testing.T) {
	r := newTestRouter(t, 3)

	t.Run("primary responds immediately", func(t *testing.T) {
		d := r.plan("my back is sore", extract.Result{Intent: extract.IntentPhysio, Confidence: 0.9, Summary: "sore back"})
		if d.Plans[0].Strategy != StrategyRespond {
			t.Fatalf("primary strategy = %s", d.Plans[0].Strategy)
		}
	})

	t.Run("confident coordinator waits on primary", func(t *testing.T) {
		d := r.plan("knee pain during squats", extract.Result{
			Intent:                 extract.IntentPhysio,
			Confidence:             0.9,
			Summary:                "knee pain",
			Entities:               map[string]any{"movement": "squat"},
			RecommendedSpecialists: []string{"physio", "coordinator"},
		})
		if len(d.Plans) != 2 {
			t.Fatalf("plans = %v", ids(d))
		}
		p := d.Plans[1]
		if p.Specialist != team.Coordinator || p.Strategy != StrategyWait {
			t.Fatalf("coordinator plan = %+v", p)
		}
		if p.WaitingOn != team.Physio {
			t.Fatalf("waiting on %s, want physio", p.WaitingOn)
		}
	})

	t.Run("uncertain coordinator asks a clarifying question", func(t *testing.T) {
		d := r.plan("I twisted something", extract.Result{
			Intent:                 extract.IntentPhysio,
			Confidence:             0.5,
			RecommendedSpecialists: []string{"physio", "coordinator"},
		})
		p := d.Plans[1]
		if p.Strategy != StrategyClarify {
			t.Fatalf("coordinator strategy = %s, want clarify", p.Strategy)
		}
	})

	t.Run("empty extraction triggers clarify regardless of confidence", func(t *testing.T) {
		d := r.plan("knee thing again", extract.Result{
			Intent:                 extract.IntentPhysio,
			Confidence:             0.9,
			RecommendedSpecialists: []string{"physio", "coordinator"},
		})
		if d.Plans[1].Strategy != StrategyClarify {
			t.Fatalf("coordinator strategy = %s", d.Plans[1].Strategy)
		}
	})

	t.Run("non-coordinator secondary waits", func(t *testing.T) {
		d := r.plan("review my labs and recovery trend", extract.Result{
			Intent:                 extract.IntentMedical,
			Confidence:             0.9,
			Summary:                "labs plus recovery",
			RecommendedSpecialists: []string{"medical", "performance"},
		})
		p := d.Plans[1]
		if p.Specialist != team.Performance || p.Strategy != StrategyWait || p.WaitingOn != team.Medical {
			t.Fatalf("secondary plan = %+v", p)
		}
	})
}

func TestPlanMessages(t *testing.T) {
	r := newTestRouter(t, 2)
	d := r.plan("my shoulder aches after pressing", extract.Result{
		Intent:     extract.IntentPhysio,
		Confidence: 0.9,
		Summary:    "shoulder ache from pressing",
	})
	msgs := d.Plans[0].Messages
	if len(msgs) < 2 {
		t.Fatalf("messages = %d", len(msgs))
	}
	if msgs[0].Role != llm.RoleSystem || !strings.Contains(msgs[0].Content, "Rachel") {
		t.Fatalf("system prompt missing specialist identity: %q", msgs[0].Content[:80])
	}
	if !strings.Contains(msgs[0].Content, HandoffPrefix) {
		t.Fatal("system prompt missing handoff instruction")
	}
	last := msgs[len(msgs)-1]
	if last.Role != llm.RoleUser || last.Content != "my shoulder aches after pressing" {
		t.Fatalf("last message = %+v", last)
	}
	var sawContext bool
	for _, m := range msgs {
		if strings.Contains(m.Content, "Routing context") {
			sawContext = true
		}
	}
	if !sawContext {
		t.Fatal("expected routing context note")
	}
}

func TestParseHandoff(t *testing.T) {
	tests := []struct {
		in   string
		want team.ID
		ok   bool
	}{
		{"HANDOFF:Rachel", team.Physio, true},
		{"  HANDOFF: Dr. Warren  ", team.Medical, true},
		{"HANDOFF:physio", team.Physio, true},
		{"HANDOFF:Rohan", "", false},
		{"HANDOFF:nobody", "", false},
		{"I can help with that.", "", false},
		{"OUT_OF_SCOPE", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseHandoff(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseHandoff(%q) = %s,%v want %s,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

type scriptedResponder struct {
	replies map[team.ID]string
	errs    map[team.ID]error
	calls   []team.ID
}

func (s *scriptedResponder) Respond(_ context.Context, spec team.Specialist, _ []llm.Message) (string, error) {
	s.calls = append(s.calls, spec.ID)
	if err, ok := s.errs[spec.ID]; ok {
		return "", err
	}
	if reply, ok := s.replies[spec.ID]; ok {
		return reply, nil
	}
	return fmt.Sprintf("[%s] ok", spec.ID), nil
}

func TestExecuteWaitingAgentStaysSilent(t *testing.T) {
	r := newTestRouter(t, 2)
	d := r.plan("knee pain during squats", extract.Result{
		Intent:                 extract.IntentPhysio,
		Confidence:             0.9,
		Summary:                "knee pain",
		RecommendedSpecialists: []string{"physio", "coordinator"},
	})
	resp := &scriptedResponder{replies: map[team.ID]string{team.Physio: "Try box squats this week."}}
	results := r.Execute(context.Background(), d, resp)
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Text == "" || results[1].Text != "" {
		t.Fatalf("results = %+v", results)
	}
	if len(resp.calls) != 1 || resp.calls[0] != team.Physio {
		t.Fatalf("calls = %v", resp.calls)
	}
}

func TestExecuteHandoffWakesWaitingAgent(t *testing.T) {
	r := newTestRouter(t, 2)
	d := r.plan("review my labs and recovery trend", extract.Result{
		Intent:                 extract.IntentMedical,
		Confidence:             0.9,
		Summary:                "labs plus recovery",
		RecommendedSpecialists: []string{"medical", "performance"},
	})
	resp := &scriptedResponder{replies: map[team.ID]string{
		team.Medical:     "HANDOFF:Advik",
		team.Performance: "Your HRV trend looks stable.",
	}}
	results := r.Execute(context.Background(), d, resp)
	if results[0].Text != "" {
		t.Fatalf("handoff text should be suppressed, got %q", results[0].Text)
	}
	if results[1].Text != "Your HRV trend looks stable." {
		t.Fatalf("secondary text = %q", results[1].Text)
	}
}

func TestExecuteHandoffOutsidePlan(t *testing.T) {
	r := newTestRouter(t, 1)
	d := r.plan("can you move my session to Thursday", extract.Result{
		Intent:                 extract.IntentLogistics,
		Confidence:             0.6,
		Summary:                "reschedule",
		RecommendedSpecialists: []string{"coordinator"},
	})
	resp := &scriptedResponder{replies: map[team.ID]string{
		team.Coordinator: "HANDOFF:Rachel",
		team.Physio:      "Thursday works, same programming.",
	}}
	results := r.Execute(context.Background(), d, resp)
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	last := results[len(results)-1]
	if last.Specialist != team.Physio || last.Text == "" {
		t.Fatalf("appended result = %+v", last)
	}
}

func TestExecuteAgentFailureDegrades(t *testing.T) {
	r := newTestRouter(t, 2)
	d := r.plan("knee pain during squats", extract.Result{
		Intent:                 extract.IntentPhysio,
		Confidence:             0.9,
		Summary:                "knee pain",
		RecommendedSpecialists: []string{"physio", "coordinator"},
	})
	resp := &scriptedResponder{errs: map[team.ID]error{team.Physio: errors.New("model unavailable")}}
	results := r.Execute(context.Background(), d, resp)
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Err == "" || results[0].Text != "" {
		t.Fatalf("failed result = %+v", results[0])
	}
}

func TestRouteDegradesOnProviderError(t *testing.T) {
	provider := failingProvider{}
	ex := extract.New(provider, "test-model", zap.NewNop())
	r := New(ex, 2, zap.NewNop())
	d := r.Route(context.Background(), "hello", nil)
	if !equalIDs(ids(d), []team.ID{team.Coordinator}) {
		t.Fatalf("selected = %v, want coordinator only", ids(d))
	}
}

type failingProvider struct{}

func (failingProvider) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return nil, errors.New("boom")
}
func (failingProvider) Name() string { return "failing" }
