package extract

import "github.com/elyxhealth/careteam/internal/team"

// Intent labels the dominant domain of a message.
type Intent string

const (
	IntentMedical     Intent = "medical"
	IntentNutrition   Intent = "nutrition"
	IntentPhysio      Intent = "physio"
	IntentPerformance Intent = "performance"
	IntentLogistics   Intent = "logistics"
	IntentOther       Intent = "other"
)

// normalizeIntent maps free-form intent strings to the closed enum.
func normalizeIntent(s string) Intent {
	switch Intent(s) {
	case IntentMedical, IntentNutrition, IntentPhysio, IntentPerformance, IntentLogistics:
		return Intent(s)
	default:
		return IntentOther
	}
}

// Result is the structured signal pulled out of one message. Fields the
// model omitted or mistyped are coerced to their zero/empty forms, so a
// Result is always safe to consume.
type Result struct {
	Summary    string         `json:"summary"`
	Intent     Intent         `json:"intent"`
	Entities   map[string]any `json:"entities"`
	Keywords   []string       `json:"keywords"`
	Confidence float64        `json:"confidence"`

	IsHealthIssue bool       `json:"is_health_issue"`
	HealthIssue   *RawIssue  `json:"health_issue,omitempty"`
	IsImprovement bool       `json:"is_improvement"`
	Improvement   *RawChange `json:"improvement,omitempty"`

	RecommendedSpecialists []string `json:"recommended_specialists"`
}

// Empty reports whether extraction produced no usable signal.
func (r Result) Empty() bool {
	return r.Summary == "" && len(r.Entities) == 0
}

// RawIssue is the unowned issue signal as extracted, before the router
// assigns an owner.
type RawIssue struct {
	Title    string `json:"title"`
	Details  string `json:"details"`
	Category string `json:"category"`
	Severity string `json:"severity"`
}

// RawChange is an extracted improvement record.
type RawChange struct {
	Title             string `json:"title"`
	Details           string `json:"details"`
	RelatedIssueTitle string `json:"related_issue_title,omitempty"`
}

// Followup is a recommended next step attached to a health issue.
type Followup struct {
	Type    string  `json:"type"`
	Agent   team.ID `json:"agent,omitempty"`
	Details string  `json:"details"`
}

// HealthIssue is the standardized issue schema with a deterministic owner.
type HealthIssue struct {
	ID                   string         `json:"id,omitempty"`
	Title                string         `json:"title"`
	Details              string         `json:"details"`
	Category             string         `json:"category"`
	Severity             string         `json:"severity"`
	DetectedEntities     map[string]any `json:"detected_entities"`
	Confidence           float64        `json:"confidence"`
	SuggestedOwner       team.ID        `json:"suggested_owner"`
	RecommendedFollowups []Followup     `json:"recommended_followups"`
}

// categoryOwners maps issue categories to the specialist that owns them.
var categoryOwners = map[string]team.ID{
	"physio":      team.Physio,
	"medical":     team.Medical,
	"nutrition":   team.Nutrition,
	"performance": team.Performance,
}

// Issue standardizes the raw issue signal into a HealthIssue. The owner is
// derived from the category, falling back to the given specialist, then to
// the coordinator. Returns nil when the result carries no issue.
func (r Result) Issue(fallback team.ID) *HealthIssue {
	if !r.IsHealthIssue || r.HealthIssue == nil {
		return nil
	}

	raw := r.HealthIssue
	category := raw.Category
	if category == "" {
		category = "other"
	}
	severity := raw.Severity
	if severity != "low" && severity != "medium" && severity != "high" {
		severity = "medium"
	}

	owner, ok := categoryOwners[category]
	if !ok {
		owner = fallback
	}
	if owner == "" {
		owner = team.Coordinator
	}

	return &HealthIssue{
		Title:            raw.Title,
		Details:          raw.Details,
		Category:         category,
		Severity:         severity,
		DetectedEntities: r.Entities,
		Confidence:       r.Confidence,
		SuggestedOwner:   owner,
		RecommendedFollowups: []Followup{
			{Type: "contact_agent", Agent: owner, Details: "Review issue and advise next steps (" + category + ")"},
			{Type: "track_issue", Details: "Create issue entry and monitor progress"},
		},
	}
}
