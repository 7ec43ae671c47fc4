// Package travel extracts trip details from member messages and derives a
// structured travel adaptation protocol.
package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/llm"
	"github.com/elyxhealth/careteam/internal/respond"
	"github.com/elyxhealth/careteam/internal/team"
)

// Details are the trip parameters pulled out of a member message. Missing
// values default to "N/A" (or empty collections) so the generator always has
// a complete input.
type Details struct {
	Origin          string            `json:"origin"`
	Destination     string            `json:"destination"`
	Dates           []string          `json:"dates"`
	TimeZones       map[string]string `json:"time_zones"`
	TrainingSplit   string            `json:"training_split"`
	HotelHub        string            `json:"hotel_hub"`
	GymRequirements string            `json:"gym_requirements"`
}

// DefaultDetails is the fallback when extraction fails entirely.
func DefaultDetails() Details {
	return Details{
		Origin:          "N/A",
		Destination:     "N/A",
		Dates:           []string{},
		TimeZones:       map[string]string{},
		TrainingSplit:   "N/A",
		HotelHub:        "N/A",
		GymRequirements: "N/A",
	}
}

func (d *Details) fillDefaults() {
	if d.Origin == "" {
		d.Origin = "N/A"
	}
	if d.Destination == "" {
		d.Destination = "N/A"
	}
	if d.Dates == nil {
		d.Dates = []string{}
	}
	if d.TimeZones == nil {
		d.TimeZones = map[string]string{}
	}
	if d.TrainingSplit == "" {
		d.TrainingSplit = "N/A"
	}
	if d.HotelHub == "" {
		d.HotelHub = "N/A"
	}
	if d.GymRequirements == "" {
		d.GymRequirements = "N/A"
	}
}

// Protocol is the travel adaptation plan attached to a routed conversation.
type Protocol struct {
	LightExposureSchedule       []string `json:"light_exposure_schedule"`
	InFlightMealsHydration      []string `json:"in_flight_meals_hydration"`
	MobilityRoutines            []string `json:"mobility_routines"`
	LocalGymOptions             []string `json:"local_gym_options"`
	ContingencyClinicianContact string   `json:"contingency_clinician_contact"`
	ArrivalDayPlan              []string `json:"arrival_day_plan"`
	CalendarBlocks              []string `json:"calendar_blocks"`
}

// triggerWords mark a message as travel-related.
var triggerWords = []string{"travel", "trip", "fly", "flying", "flight"}

// Mentioned reports whether the message talks about travel.
func Mentioned(message string) bool {
	lower := strings.ToLower(message)
	for _, w := range triggerWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

const detailsSchemaJSON = `{
	"type": "object",
	"required": ["origin", "destination", "dates", "time_zones", "training_split", "hotel_hub", "gym_requirements"],
	"properties": {
		"origin": {"type": "string"},
		"destination": {"type": "string"},
		"dates": {"type": "array", "items": {"type": "string"}},
		"time_zones": {"type": "object", "additionalProperties": {"type": "string"}},
		"training_split": {"type": "string"},
		"hotel_hub": {"type": "string"},
		"gym_requirements": {"type": "string"}
	}
}`

const extractPrompt = `You extract travel information from a member's message.
Return a JSON object with exactly these keys: "origin", "destination", "dates"
(array of date strings, travel day first), "time_zones" (object mapping place
to UTC offset), "training_split", "hotel_hub", "gym_requirements". Use "N/A"
(or an empty array/object) for anything the message does not state.`

// Extractor pulls trip details from free text via the structured responder.
type Extractor struct {
	responder *respond.Responder
	schema    *respond.Schema
	logger    *zap.Logger
}

func NewExtractor(responder *respond.Responder, logger *zap.Logger) (*Extractor, error) {
	schema, err := respond.CompileSchema([]byte(detailsSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("travel details schema: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{responder: responder, schema: schema, logger: logger}, nil
}

// Extract never fails: unusable model output degrades to DefaultDetails.
func (e *Extractor) Extract(ctx context.Context, message string) Details {
	spec, _ := team.Get(team.Coordinator)
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: extractPrompt},
		{Role: llm.RoleUser, Content: message},
	}
	text, err := e.responder.RespondStructured(ctx, spec, msgs, e.schema)
	if err != nil || text == respond.FailureSentinel {
		e.logger.Debug("travel extraction degraded", zap.Error(err))
		return DefaultDetails()
	}
	var d Details
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return DefaultDetails()
	}
	d.fillDefaults()
	return d
}

// Generate derives the adaptation protocol from trip details. The plan is
// deterministic; only calendar blocks vary with the extracted dates.
func Generate(d Details) Protocol {
	p := Protocol{
		LightExposureSchedule: []string{
			"Morning: Seek bright light upon waking.",
			"Afternoon: Avoid bright light 2 hours before bedtime.",
		},
		InFlightMealsHydration: []string{
			"Drink 250ml of water every hour.",
			"Avoid alcohol and caffeine.",
			"Eat a light, protein-rich meal.",
		},
		MobilityRoutines: []string{
			"Perform ankle circles and leg raises every hour.",
			"Stretch your hamstrings and hip flexors upon arrival.",
		},
		LocalGymOptions: []string{
			"Pure Fitness, Singapore",
			"Fitness First, Singapore",
		},
		ContingencyClinicianContact: "Dr. Warren (+65 1234 5678)",
		ArrivalDayPlan: []string{
			"Upon arrival, have a light meal.",
			"Engage in light physical activity, like a walk.",
			"Go to bed at your regular local time.",
		},
	}
	switch {
	case len(d.Dates) == 0:
		p.CalendarBlocks = []string{"Travel Day: N/A", "Arrival Day: N/A"}
	case len(d.Dates) == 1:
		p.CalendarBlocks = []string{"Travel Day: " + d.Dates[0], "Arrival Day: N/A"}
	default:
		p.CalendarBlocks = []string{"Travel Day: " + d.Dates[0], "Arrival Day: " + d.Dates[1]}
	}
	return p
}
