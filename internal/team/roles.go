package team

import "strings"

// ID is the canonical identifier of a specialist role.
type ID string

const (
	Coordinator   ID = "coordinator"
	Medical       ID = "medical"
	Performance   ID = "performance"
	Nutrition     ID = "nutrition"
	Physio        ID = "physio"
	StrategicLead ID = "strategic-lead"
	Member        ID = "member"
)

// Specialist is the static configuration of one care-team role. Specialists
// are fixed at startup and never mutated at runtime.
type Specialist struct {
	ID               ID
	Name             string
	Role             string
	SystemPrompt     string
	Responsibilities []string
	ResponseStyle    string
	SLATargetHours   float64
	EscalationHours  float64

	// Routable marks roles the router may select. The member persona is
	// registered so the responder can generate member follow-ups, but it
	// is never a routing target.
	Routable bool
}

// Speaker returns the label used to attribute this specialist's messages.
func (s Specialist) Speaker() string {
	return s.Name + " - " + s.Role
}

// registry holds the fixed care team, keyed by canonical ID.
var registry = map[ID]Specialist{
	Coordinator: {
		ID:               Coordinator,
		Name:             "Ruby",
		Role:             "Concierge / Orchestrator",
		SystemPrompt:     coordinatorPrompt,
		Responsibilities: []string{"logistics", "scheduling", "coordination", "friction_removal", "primary_contact", "orchestrator", "triage"},
		ResponseStyle:    "empathetic, organized, proactive, facilitative",
		SLATargetHours:   1,
		EscalationHours:  3,
		Routable:         true,
	},
	Medical: {
		ID:               Medical,
		Name:             "Dr. Warren",
		Role:             "Medical Strategist",
		SystemPrompt:     medicalPrompt,
		Responsibilities: []string{"medical_decisions", "lab_interpretation", "clinical_strategy", "diagnostic_approval"},
		ResponseStyle:    "authoritative, precise, scientific",
		SLATargetHours:   4,
		EscalationHours:  8,
		Routable:         true,
	},
	Performance: {
		ID:               Performance,
		Name:             "Advik",
		Role:             "Performance Scientist",
		SystemPrompt:     performancePrompt,
		Responsibilities: []string{"wearable_data", "sleep_analysis", "hrv_monitoring", "performance_optimization", "data_experiments"},
		ResponseStyle:    "analytical, curious, data-driven",
		SLATargetHours:   3,
		EscalationHours:  6,
		Routable:         true,
	},
	Nutrition: {
		ID:               Nutrition,
		Name:             "Carla",
		Role:             "Nutritionist",
		SystemPrompt:     nutritionPrompt,
		Responsibilities: []string{"nutrition_planning", "cgm_analysis", "supplement_recommendations", "fuel_pillar", "behavioral_change"},
		ResponseStyle:    "practical, educational, behavior-focused",
		SLATargetHours:   3,
		EscalationHours:  6,
		Routable:         true,
	},
	Physio: {
		ID:               Physio,
		Name:             "Rachel",
		Role:             "Physiotherapist",
		SystemPrompt:     physioPrompt,
		Responsibilities: []string{"movement_quality", "strength_programming", "injury_prevention", "chassis_pillar", "physical_structure"},
		ResponseStyle:    "direct, encouraging, form-focused",
		SLATargetHours:   4,
		EscalationHours:  8,
		Routable:         true,
	},
	StrategicLead: {
		ID:               StrategicLead,
		Name:             "Neel",
		Role:             "Concierge Lead / Relationship Manager",
		SystemPrompt:     strategicLeadPrompt,
		Responsibilities: []string{"strategic_reviews", "escalations", "relationship_management", "big_picture", "value_reinforcement"},
		ResponseStyle:    "strategic, reassuring, big-picture",
		SLATargetHours:   6,
		EscalationHours:  12,
		Routable:         true,
	},
	Member: {
		ID:           Member,
		Name:         "Rohan",
		Role:         "Member",
		SystemPrompt: memberPrompt,
	},
}

// aliases maps lowercased display names to canonical IDs, so extractor
// recommendations phrased as names ("Ruby", "dr. warren") normalize too.
var aliases = func() map[string]ID {
	m := make(map[string]ID, 2*len(registry))
	for id, s := range registry {
		m[string(id)] = id
		m[strings.ToLower(s.Name)] = id
	}
	return m
}()

// Get returns the specialist for the given canonical ID.
func Get(id ID) (Specialist, bool) {
	s, ok := registry[id]
	return s, ok
}

// Normalize resolves a free-form specialist name to a canonical routable ID.
// Unknown names yield ok=false and are dropped by callers, never an error.
func Normalize(name string) (ID, bool) {
	id, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	if s := registry[id]; !s.Routable {
		return "", false
	}
	return id, true
}

// Routable returns all routable specialists, for registry listings.
func Routable() []Specialist {
	out := make([]Specialist, 0, len(registry))
	for _, id := range []ID{Coordinator, Medical, Performance, Nutrition, Physio, StrategicLead} {
		out = append(out, registry[id])
	}
	return out
}
