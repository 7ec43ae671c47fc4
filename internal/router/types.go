package router

import (
	"github.com/elyxhealth/careteam/internal/extract"
	"github.com/elyxhealth/careteam/internal/llm"
	"github.com/elyxhealth/careteam/internal/team"
)

// Strategy tells an agent how to participate in the current turn.
type Strategy string

const (
	// StrategyRespond makes the agent answer the member immediately.
	StrategyRespond Strategy = "respond-immediately"
	// StrategyClarify makes the coordinator ask one targeted clarifying
	// question instead of answering.
	StrategyClarify Strategy = "ask-clarifying-question"
	// StrategyWait parks the agent until the primary responds or hands off.
	StrategyWait Strategy = "wait-for-primary-or-handoff"
)

// Plan is one agent's share of a routing decision.
type Plan struct {
	Specialist team.ID  `json:"specialist"`
	Speaker    string   `json:"speaker"`
	Strategy   Strategy `json:"strategy"`
	// WaitingOn names the specialist this agent defers to. Set only for
	// StrategyWait.
	WaitingOn team.ID `json:"waiting_on,omitempty"`
	// Reason records why the agent was selected, for audit and tests.
	Reason string `json:"reason"`
	// Messages is the fully built prompt for this agent's turn.
	Messages []llm.Message `json:"-"`
}

// Decision is the complete outcome of routing one member message.
type Decision struct {
	Primary    team.ID        `json:"primary"`
	Plans      []Plan         `json:"plans"`
	Extraction extract.Result `json:"extraction"`
	Urgency    team.Urgency   `json:"urgency"`
	// Issue is the structured health issue derived from the extraction,
	// nil when the message did not report one.
	Issue *extract.HealthIssue `json:"issue,omitempty"`
}

// Selected returns the ordered specialist IDs in the decision.
func (d Decision) Selected() []team.ID {
	out := make([]team.ID, 0, len(d.Plans))
	for _, p := range d.Plans {
		out = append(out, p.Specialist)
	}
	return out
}
