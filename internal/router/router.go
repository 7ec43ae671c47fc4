package router

import (
	"context"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/extract"
	"github.com/elyxhealth/careteam/internal/team"
)

const (
	// promoteConfidence is the extraction confidence above which the
	// extractor's recommended ordering is trusted over the intent label.
	promoteConfidence = 0.85
	// clarifyConfidence is the extraction confidence below which a
	// non-primary coordinator asks a clarifying question instead of waiting.
	clarifyConfidence = 0.70
)

// Router turns a member message into an ordered multi-agent plan.
type Router struct {
	extractor *extract.Extractor
	logger    *zap.Logger
	maxAgents int
}

func New(extractor *extract.Extractor, maxAgents int, logger *zap.Logger) *Router {
	if maxAgents < 1 {
		maxAgents = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{extractor: extractor, logger: logger, maxAgents: maxAgents}
}

// Route extracts structure from the message and decides which specialists
// participate, in what order, and with what strategy. Route never fails:
// extraction errors degrade to a coordinator-only plan.
func (r *Router) Route(ctx context.Context, message string, msgCtx map[string]any) Decision {
	res := r.extractor.Extract(ctx, message, msgCtx)
	return r.plan(message, res)
}

func (r *Router) plan(message string, res extract.Result) Decision {
	hadRecommendations := len(res.RecommendedSpecialists) > 0

	selected := make([]team.ID, 0, r.maxAgents)
	reasons := map[team.ID]string{}
	for _, name := range res.RecommendedSpecialists {
		id, ok := team.Normalize(name)
		if !ok {
			continue
		}
		if _, dup := reasons[id]; dup {
			continue
		}
		selected = append(selected, id)
		reasons[id] = "recommended"
	}
	if len(selected) == 0 {
		selected = []team.ID{team.Coordinator}
		reasons[team.Coordinator] = "fallback"
	}

	// Physio language wins outright: physio leads and nutrition is dropped
	// before anything else happens. The reverse does not hold; nutrition
	// hints never evict physio here.
	if hasPhysioHint(message) {
		selected = removeID(selected, team.Nutrition)
		selected = moveToFront(selected, team.Physio)
		if reasons[team.Physio] == "" {
			reasons[team.Physio] = "keyword-hint"
		}
	}

	if len(selected) > r.maxAgents {
		selected = selected[:r.maxAgents]
	}

	// The intent label implies a specialist; an explicit keyword hint
	// overrides the label. The implied specialist is promoted to primary
	// only when the extractor's own ordering is not trustworthy.
	implied := intentImplied[res.Intent]
	hint := hintSpecialist(message)
	if hint != "" {
		implied = hint
	}
	if implied != "" && (!hadRecommendations || res.Confidence < promoteConfidence || hint != "") {
		selected = moveToFront(selected, implied)
		if len(selected) > r.maxAgents {
			selected = selected[:r.maxAgents]
		}
		if reasons[implied] == "" {
			if hint != "" {
				reasons[implied] = "keyword-hint"
			} else {
				reasons[implied] = "intent-match"
			}
		}
	}

	// Safety net: physio and nutrition never share a plan.
	switch implied {
	case team.Physio:
		selected = removeID(selected, team.Nutrition)
	case team.Nutrition:
		selected = removeID(selected, team.Physio)
	}
	if len(selected) == 0 {
		selected = []team.ID{team.Coordinator}
		reasons[team.Coordinator] = "fallback"
	}

	primary := selected[0]
	d := Decision{
		Primary:    primary,
		Extraction: res,
		Urgency:    team.DetectUrgency(message),
		Issue:      res.Issue(primary),
	}
	for i, id := range selected {
		spec, ok := team.Get(id)
		if !ok {
			continue
		}
		p := Plan{Specialist: id, Speaker: spec.Speaker(), Reason: reasons[id]}
		switch {
		case i == 0:
			p.Strategy = StrategyRespond
		case id == team.Coordinator && (res.Confidence < clarifyConfidence || res.Empty()):
			p.Strategy = StrategyClarify
		default:
			p.Strategy = StrategyWait
			p.WaitingOn = primary
		}
		p.Messages = buildMessages(spec, message, res, p)
		d.Plans = append(d.Plans, p)
	}

	r.logger.Debug("routed message",
		zap.String("primary", string(primary)),
		zap.Any("selected", selected),
		zap.String("intent", string(res.Intent)),
		zap.Float64("confidence", res.Confidence),
		zap.String("urgency", d.Urgency.String()))
	return d
}

func removeID(ids []team.ID, drop team.ID) []team.ID {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// moveToFront puts id first, prepending it when absent.
func moveToFront(ids []team.ID, id team.ID) []team.ID {
	out := []team.ID{id}
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
