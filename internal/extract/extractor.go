package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/llm"
)

const routerSystemPrompt = `You are an expert router/orchestrator for a multi-agent healthcare team.
Your job is twofold: (1) extract concise structured information from the user's message
(summary, top intent, important entities/measurements), and (2) decide which specialist(s)
should handle the user's request.

Return JSON only for extraction tasks, for example:
{"summary": "...", "intent": "nutrition|medical|logistics|performance|physio|other", "entities": {"glucose": "150", "sleep_hours": "6"}, "keywords": ["cgm", "spike"], "confidence": 0.8}`

// Extractor pulls structured signal out of raw messages via the completion
// client. Results are memoized by (message, serialized context) with a
// bounded cache. Extraction never fails: any upstream or decode failure
// degrades to an empty Result.
type Extractor struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
	cache    *resultCache
}

// New creates an Extractor backed by the given provider.
func New(provider llm.Provider, model string, logger *zap.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		model:    model,
		logger:   logger,
		cache:    newResultCache(),
	}
}

// Extract returns structured signal for the message. Failures degrade to
// an all-default Result rather than an error.
func (e *Extractor) Extract(ctx context.Context, message string, msgCtx map[string]any) Result {
	key := cacheKey(message, msgCtx)
	if cached, ok := e.cache.get(key); ok {
		e.logger.Debug("extraction cache hit")
		return cached
	}

	req := llm.CompletionRequest{
		Model:   e.model,
		Speaker: "Router - Orchestrator",
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: routerSystemPrompt},
			{Role: llm.RoleUser, Content: buildExtractionPrompt(message, msgCtx)},
		},
		JSONMode: true,
	}

	resp, err := e.provider.Complete(ctx, req)
	if err != nil {
		e.logger.Warn("extraction completion failed", zap.Error(err))
		return Result{Intent: IntentOther}
	}

	var raw map[string]any
	if !DecodeObject(resp.Content, &raw) {
		// Decode failure is distinct from a legitimately empty result.
		e.logger.Warn("extraction response not decodable",
			zap.Int("response_len", len(resp.Content)))
		return Result{Intent: IntentOther}
	}

	result := coerce(raw)
	e.cache.put(key, result)
	return result
}

func buildExtractionPrompt(message string, msgCtx map[string]any) string {
	ctxJSON := "{}"
	if len(msgCtx) > 0 {
		if b, err := json.Marshal(msgCtx); err == nil {
			ctxJSON = string(b)
		}
	}
	return fmt.Sprintf(`Extract the following from the user message in strict JSON:
{"summary":"...","intent":"...","entities":{...},"keywords":[...],"confidence":0-1,"is_health_issue": true|false,"health_issue": {"title":"...","details":"...","category":"medical|physio|nutrition|performance|other","severity":"low|medium|high"},"is_improvement": true|false,"improvement": {"title":"...","details":"...","related_issue_title":"optional"},"recommended_specialists":["coordinator","nutrition", ...]}

User Message: %s
Context: %s

If you cannot identify entities/health_issue/improvement, return empty objects/false accordingly. Return JSON only.`, message, ctxJSON)
}

func cacheKey(message string, msgCtx map[string]any) string {
	ctxJSON := "{}"
	if len(msgCtx) > 0 {
		if b, err := json.Marshal(msgCtx); err == nil {
			ctxJSON = string(b)
		}
	}
	return strings.TrimSpace(message) + "\x00" + ctxJSON
}

// coerce maps a loosely-typed decoded object onto Result, forcing every
// field to its expected type: non-list values become empty lists,
// non-mapping values empty mappings, non-bool values false.
func coerce(raw map[string]any) Result {
	r := Result{
		Summary:                asString(raw["summary"]),
		Intent:                 normalizeIntent(asString(raw["intent"])),
		Entities:               asMap(raw["entities"]),
		Keywords:               asStringSlice(raw["keywords"]),
		Confidence:             asFloat(raw["confidence"]),
		IsHealthIssue:          asBool(raw["is_health_issue"]),
		IsImprovement:          asBool(raw["is_improvement"]),
		RecommendedSpecialists: asStringSlice(raw["recommended_specialists"]),
	}

	if issue := asMap(raw["health_issue"]); len(issue) > 0 {
		r.HealthIssue = &RawIssue{
			Title:    asString(issue["title"]),
			Details:  asString(issue["details"]),
			Category: asString(issue["category"]),
			Severity: asString(issue["severity"]),
		}
	}
	if imp := asMap(raw["improvement"]); len(imp) > 0 {
		r.Improvement = &RawChange{
			Title:             asString(imp["title"]),
			Details:           asString(imp["details"]),
			RelatedIssueTitle: asString(imp["related_issue_title"]),
		}
	}

	// A message cannot be both an issue and an improvement. Issues win
	// because they require triage.
	if r.IsHealthIssue && r.IsImprovement {
		r.IsImprovement = false
	}

	return r
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return f
		}
	}
	return 0
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}

func asStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
