package router

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elyxhealth/careteam/internal/extract"
	"github.com/elyxhealth/careteam/internal/llm"
	"github.com/elyxhealth/careteam/internal/team"
)

// HandoffPrefix is the literal token an agent emits to transfer a question
// to a teammate. The full form is "HANDOFF:<Specialist Name>".
const HandoffPrefix = "HANDOFF:"

// OutOfScopeToken is the literal token an agent emits when a question is
// outside every teammate's domain.
const OutOfScopeToken = "OUT_OF_SCOPE"

// ParseHandoff returns the specialist a response hands off to, if the
// response is a handoff token.
func ParseHandoff(response string) (team.ID, bool) {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, HandoffPrefix) {
		return "", false
	}
	name := strings.TrimSpace(strings.TrimPrefix(trimmed, HandoffPrefix))
	return team.Normalize(name)
}

func boundaryInstruction(s team.Specialist) string {
	var b strings.Builder
	b.WriteString("STAY IN YOUR DOMAIN. Your responsibilities:\n")
	for _, r := range s.Responsibilities {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\nIf the member's question belongs to a teammate, reply with exactly ")
	b.WriteString(HandoffPrefix)
	b.WriteString("<Specialist Name> and nothing else. Teammates:\n")
	for _, t := range team.Routable() {
		if t.ID == s.ID {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s)\n", t.Name, t.Role)
	}
	b.WriteString("\nIf the question belongs to nobody on the team, reply with exactly ")
	b.WriteString(OutOfScopeToken)
	b.WriteString(".")
	return b.String()
}

const coordinatorDeferNote = `A domain specialist is the primary responder for this message. Do NOT answer the domain question yourself. Limit your reply to logistics, scheduling, and coordination, or stay silent and let the specialist lead.`

const clarifyNote = `The member's request is ambiguous. Do NOT answer it. Ask exactly ONE concise clarifying question that would let the right specialist act. One or two sentences, nothing else.`

// contextNote serializes the extraction's key facts so an agent sees what
// the routing layer understood, not just the raw text.
func contextNote(res extract.Result) (string, bool) {
	if res.Empty() && res.Intent == extract.IntentOther {
		return "", false
	}
	payload := map[string]any{"intent": string(res.Intent)}
	if res.Summary != "" {
		payload["summary"] = res.Summary
	}
	if len(res.Entities) > 0 {
		payload["entities"] = res.Entities
	}
	if len(res.Keywords) > 0 {
		payload["keywords"] = res.Keywords
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", false
	}
	return "Routing context (extracted from the member's message): " + string(raw), true
}

// buildMessages assembles the prompt for one agent's turn.
func buildMessages(s team.Specialist, message string, res extract.Result, p Plan) []llm.Message {
	msgs := []llm.Message{{
		Role:    llm.RoleSystem,
		Content: s.SystemPrompt + "\n\n" + boundaryInstruction(s),
	}}
	if note, ok := contextNote(res); ok {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: note})
	}
	switch {
	case p.Strategy == StrategyClarify:
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: clarifyNote})
	case s.ID == team.Coordinator && p.Strategy != StrategyRespond:
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: coordinatorDeferNote})
	case p.Strategy == StrategyWait:
		if waiting, ok := team.Get(p.WaitingOn); ok {
			msgs = append(msgs, llm.Message{
				Role:    llm.RoleSystem,
				Content: fmt.Sprintf("%s responds first. You are on standby; reply only if the question is handed off to you.", waiting.Speaker()),
			})
		}
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
	return msgs
}
