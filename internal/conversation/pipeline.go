package conversation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/extract"
	"github.com/elyxhealth/careteam/internal/issues"
	"github.com/elyxhealth/careteam/internal/respond"
	"github.com/elyxhealth/careteam/internal/router"
	"github.com/elyxhealth/careteam/internal/team"
	"github.com/elyxhealth/careteam/internal/travel"
)

// Result is the outcome of processing one inbound message.
type Result struct {
	Member    Message          `json:"member_message"`
	Decision  router.Decision  `json:"decision"`
	Responses []Message        `json:"responses"`
	Protocol  *travel.Protocol `json:"travel_protocol,omitempty"`
	Resolved  []issues.Issue   `json:"resolved_issues,omitempty"`
	NewIssues int              `json:"new_issues"`
	Deadline  time.Time        `json:"sla_deadline"`
}

// Pipeline runs the member chat flow: log, auto-resolve, route, respond.
type Pipeline struct {
	log       *Log
	router    *router.Router
	responder *respond.Responder
	issues    *issues.Store
	travel    *travel.Extractor
	logger    *zap.Logger
}

func NewPipeline(log *Log, rt *router.Router, responder *respond.Responder, store *issues.Store, travelEx *travel.Extractor, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		log:       log,
		router:    rt,
		responder: responder,
		issues:    store,
		travel:    travelEx,
		logger:    logger,
	}
}

// Log exposes the underlying conversation record.
func (p *Pipeline) Log() *Log { return p.log }

// Process handles one inbound member message end to end. It always returns
// a Result when the message could be logged; downstream degradations (failed
// agents, unusable extractions) are captured inside the result, never
// surfaced as errors.
func (p *Pipeline) Process(ctx context.Context, sender, text string, msgCtx map[string]any) (*Result, error) {
	if msgCtx == nil {
		msgCtx = map[string]any{}
	}

	// Travel talk gets an adaptation protocol attached to the routing
	// context before any agent sees the message.
	var protocol *travel.Protocol
	if p.travel != nil && travel.Mentioned(text) {
		details := p.travel.Extract(ctx, text)
		generated := travel.Generate(details)
		protocol = &generated
		msgCtx["travel_protocol"] = generated
	}

	member, err := p.log.Append(sender, text, msgCtx)
	if err != nil {
		return nil, err
	}

	res := &Result{Member: member, Protocol: protocol}

	// A recovery update closes matching open issues before routing.
	if p.issues != nil {
		resolved, err := p.issues.CloseByText(text, member.ID)
		if err != nil {
			p.logger.Warn("issue auto-close failed", zap.Error(err))
		}
		res.Resolved = resolved
	}

	decision := p.router.Route(ctx, text, msgCtx)
	res.Decision = decision
	if primary, ok := team.Get(decision.Primary); ok {
		res.Deadline = team.SLADeadline(primary, decision.Urgency, time.Now().UTC())
		p.logger.Info("message routed",
			zap.String("primary", string(decision.Primary)),
			zap.String("urgency", decision.Urgency.String()),
			zap.Time("sla_deadline", res.Deadline))
	}

	if decision.Issue != nil && p.issues != nil {
		n, err := p.issues.AddMany([]*extract.HealthIssue{decision.Issue}, member.ID)
		if err != nil {
			p.logger.Warn("issue insert failed", zap.Error(err))
		}
		res.NewIssues = n
	}

	for _, r := range p.router.Execute(ctx, decision, p.responder) {
		if r.Text == "" {
			continue
		}
		logged, err := p.log.Append(r.Speaker, r.Text, map[string]any{
			"strategy":    string(r.Strategy),
			"in_reply_to": member.ID,
		})
		if err != nil {
			return res, err
		}
		res.Responses = append(res.Responses, logged)
	}
	return res, nil
}
