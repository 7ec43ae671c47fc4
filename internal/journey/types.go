// Package journey simulates the member's multi-week program: weekly events,
// synthetic conversations, diagnostics, adherence, and micro-replans.
package journey

// State is the whole journey record, mutated once per simulated week and
// persisted after every advance.
type State struct {
	CurrentWeek       int               `json:"current_week"`
	TotalWeeks        int               `json:"total_weeks"`
	ActiveConditions  []string          `json:"active_conditions"`
	ActiveMedications []string          `json:"active_medications"`
	ExercisePlan      map[string]any    `json:"exercise_plan"`
	NutritionPlan     map[string]any    `json:"nutrition_plan"`
	DiagnosticPanels  []DiagnosticPanel `json:"diagnostic_panels"`
	MicroReplans      []MicroReplan     `json:"micro_replans"`
}

// normalize fills optional fields older persisted states may lack.
func (s *State) normalize() {
	if s.ActiveConditions == nil {
		s.ActiveConditions = []string{}
	}
	if s.ActiveMedications == nil {
		s.ActiveMedications = []string{}
	}
	if s.ExercisePlan == nil {
		s.ExercisePlan = map[string]any{}
	}
	if s.NutritionPlan == nil {
		s.NutritionPlan = map[string]any{}
	}
	if s.DiagnosticPanels == nil {
		s.DiagnosticPanels = []DiagnosticPanel{}
	}
	if s.MicroReplans == nil {
		s.MicroReplans = []MicroReplan{}
	}
}

// DiagnosticPanel is one quarterly lab snapshot. Delta is computed against
// the immediately preceding panel only; a biomarker absent from the prior
// panel has no delta entry.
type DiagnosticPanel struct {
	Week    int               `json:"week"`
	Results map[string]string `json:"results"`
	Delta   map[string]string `json:"delta"`
}

// MicroReplan is a plan adjustment created when weekly adherence drops below
// the configured threshold.
type MicroReplan struct {
	Week    int      `json:"week"`
	Version string   `json:"version"`
	Reason  string   `json:"reason"`
	Changes []string `json:"changes"`
}

// Metrics are the synthetic weekly health numbers.
type Metrics struct {
	BloodSugarAvg float64 `json:"blood_sugar_avg"`
	A1C           float64 `json:"a1c"`
	Weight        float64 `json:"weight"`
}

// AgentActions summarizes simulated team effort for the week.
type AgentActions struct {
	DoctorHours int `json:"doctor_hours"`
	CoachHours  int `json:"coach_hours"`
}

// Report is the weekly summary persisted after each simulated week.
type Report struct {
	Week              int          `json:"week"`
	Events            []string     `json:"events"`
	ConversationCount int          `json:"conversations_count"`
	AdherenceRate     float64      `json:"adherence_rate"`
	HealthMetrics     Metrics      `json:"health_metrics"`
	AgentActions      AgentActions `json:"agent_actions"`
	Recommendations   []string     `json:"recommendations"`
}
