package team

import (
	"strings"
	"time"
)

// Urgency classifies how quickly a message needs attention.
type Urgency int

const (
	UrgencyLow Urgency = iota + 1
	UrgencyMedium
	UrgencyHigh
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyCritical:
		return "critical"
	case UrgencyHigh:
		return "high"
	case UrgencyMedium:
		return "medium"
	default:
		return "low"
	}
}

var urgencyKeywords = map[Urgency][]string{
	UrgencyCritical: {
		"emergency", "urgent", "critical", "severe pain", "chest pain",
		"difficulty breathing", "can't breathe", "hospital", "911",
	},
	UrgencyHigh: {
		"pain", "worried", "concerned", "problem", "issue", "help needed",
		"not feeling well", "sick", "fever", "bleeding", "frustrated", "dissatisfied",
	},
	UrgencyMedium: {
		"question", "confused", "unsure", "clarification", "when should",
		"disappointed", "need help",
	},
}

// DetectUrgency scans message content for urgency markers, checking the
// most urgent tier first.
func DetectUrgency(message string) Urgency {
	lower := strings.ToLower(message)
	for _, level := range []Urgency{UrgencyCritical, UrgencyHigh, UrgencyMedium} {
		for _, k := range urgencyKeywords[level] {
			if strings.Contains(lower, k) {
				return level
			}
		}
	}
	return UrgencyLow
}

// SLADeadline derives the response deadline for a specialist handling a
// message of the given urgency, relative to now. Critical messages get a
// flat half hour regardless of the specialist's target.
func SLADeadline(s Specialist, urgency Urgency, now time.Time) time.Time {
	var hours float64
	switch urgency {
	case UrgencyCritical:
		hours = 0.5
	case UrgencyHigh:
		hours = s.SLATargetHours * 0.5
	case UrgencyMedium:
		hours = s.SLATargetHours
	default:
		hours = s.SLATargetHours * 1.5
	}
	return now.Add(time.Duration(hours * float64(time.Hour)))
}
