package router

import (
	"context"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/llm"
	"github.com/elyxhealth/careteam/internal/team"
)

// Responder produces one agent's reply for a built prompt.
type Responder interface {
	Respond(ctx context.Context, spec team.Specialist, msgs []llm.Message) (string, error)
}

// Result is one agent's executed turn. Text is empty when the agent failed
// or stayed silent.
type Result struct {
	Specialist team.ID  `json:"specialist"`
	Speaker    string   `json:"speaker"`
	Strategy   Strategy `json:"strategy"`
	Text       string   `json:"text,omitempty"`
	Err        string   `json:"error,omitempty"`
}

// Execute runs a routing decision against a responder. Responding and
// clarifying agents speak now; waiting agents speak only when the primary
// hands off to them. A failed agent yields an empty Result with the error
// recorded, never an aborted turn.
func (r *Router) Execute(ctx context.Context, d Decision, responder Responder) []Result {
	results := make([]Result, 0, len(d.Plans))
	var handoffTarget team.ID

	for i, p := range d.Plans {
		res := Result{Specialist: p.Specialist, Speaker: p.Speaker, Strategy: p.Strategy}
		speak := p.Strategy == StrategyRespond || p.Strategy == StrategyClarify
		if !speak && p.Specialist == handoffTarget && handoffTarget != "" {
			speak = true
		}
		if speak {
			spec, _ := team.Get(p.Specialist)
			text, err := responder.Respond(ctx, spec, p.Messages)
			if err != nil {
				r.logger.Warn("agent turn failed",
					zap.String("specialist", string(p.Specialist)),
					zap.Error(err))
				res.Err = err.Error()
			} else if target, ok := ParseHandoff(text); ok && i == 0 {
				handoffTarget = target
				res.Text = ""
			} else {
				res.Text = text
			}
		}
		results = append(results, res)
	}

	// A primary handoff to somebody outside the plan still gets answered.
	if handoffTarget != "" && !planContains(d.Plans, handoffTarget) {
		if spec, ok := team.Get(handoffTarget); ok && spec.Routable {
			p := Plan{Specialist: handoffTarget, Speaker: spec.Speaker(), Strategy: StrategyRespond}
			p.Messages = buildMessages(spec, lastUser(d.Plans), d.Extraction, p)
			res := Result{Specialist: handoffTarget, Speaker: spec.Speaker(), Strategy: StrategyRespond}
			text, err := responder.Respond(ctx, spec, p.Messages)
			if err != nil {
				res.Err = err.Error()
			} else {
				res.Text = text
			}
			results = append(results, res)
		}
	}
	return results
}

func planContains(plans []Plan, id team.ID) bool {
	for _, p := range plans {
		if p.Specialist == id {
			return true
		}
	}
	return false
}

func lastUser(plans []Plan) string {
	if len(plans) == 0 {
		return ""
	}
	return llm.LastUserContent(plans[0].Messages)
}
