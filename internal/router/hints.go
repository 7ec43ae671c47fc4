package router

import (
	"strings"

	"github.com/elyxhealth/careteam/internal/extract"
	"github.com/elyxhealth/careteam/internal/team"
)

// Keyword hint sets: strong, literal domain signals scanned case-insensitively
// over the raw message. Hints take precedence over the extractor's intent
// label when both are present.
var (
	physioHints      = []string{"pain", "injury", "back", "knee", "shoulder", "mobility", "rehab"}
	medicalHints     = []string{"fever", "bleeding", "chest", "diagnosis", "lab", "blood", "test", "result", "prescription"}
	nutritionHints   = []string{"cgm", "glucose", "meal", "food", "diet", "protein", "carb", "supplement"}
	performanceHints = []string{"whoop", "oura", "hrv", "sleep", "recovery", "workout", "exercise"}
)

func containsAny(lower string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// hintSpecialist returns the specialist implied by keyword hints in the
// message, or "" when none match. Hint sets are checked in a fixed order;
// the first match wins.
func hintSpecialist(message string) team.ID {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, physioHints):
		return team.Physio
	case containsAny(lower, medicalHints):
		return team.Medical
	case containsAny(lower, nutritionHints):
		return team.Nutrition
	case containsAny(lower, performanceHints):
		return team.Performance
	default:
		return ""
	}
}

// hasPhysioHint reports whether the message carries physio language. When it
// does, the nutrition specialist is excluded from the plan entirely: the two
// domains are treated as mutually exclusive so a nutrition agent never
// answers a movement/injury question.
func hasPhysioHint(message string) bool {
	return containsAny(strings.ToLower(message), physioHints)
}

// intentImplied maps an extraction intent to the specialist it implies.
var intentImplied = map[extract.Intent]team.ID{
	extract.IntentPhysio:      team.Physio,
	extract.IntentMedical:     team.Medical,
	extract.IntentNutrition:   team.Nutrition,
	extract.IntentPerformance: team.Performance,
	extract.IntentLogistics:   team.Coordinator,
}
