package journey

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/conversation"
	"github.com/elyxhealth/careteam/internal/team"
)

// Weekly event labels. Exactly one calendar branch fires per week; the first
// matching rule wins.
const (
	EventOnboarding          = "onboarding_complete"
	EventInitialHighSugar    = "initial_blood_test_high_sugar"
	EventQuarterlyDiagnostic = "quarterly_diagnostic_test"
	EventLegInjury           = "leg_injury_reported"
	EventBusinessTravel      = "business_travel"
	EventExercisePlanUpdate  = "exercise_plan_update"
)

// WeeklyEvents applies the fixed event calendar.
func WeeklyEvents(week int) []string {
	switch {
	case week == 1:
		return []string{EventOnboarding, EventInitialHighSugar}
	case week == 12 || week == 24 || week == 34:
		return []string{EventQuarterlyDiagnostic}
	case week == 10:
		return []string{EventLegInjury}
	case week%4 == 0:
		return []string{EventBusinessTravel}
	case week%2 == 0:
		return []string{EventExercisePlanUpdate}
	default:
		return []string{}
	}
}

func hasEvent(events []string, name string) bool {
	for _, e := range events {
		if e == name {
			return true
		}
	}
	return false
}

const (
	injuryMessage     = "I twisted my leg at the hotel gym - it's painful and swollen. What should I do?"
	travelMessage     = "I'm traveling to Singapore next week. How should I adjust my plan?"
	diagnosticMessage = "Just got my test results back. Can we review them together?"
)

var curiosityMessages = []string{
	"I read about CGM devices. Should I get one for better blood sugar monitoring?",
	"What's the latest research on intermittent fasting for diabetes?",
	"How does sleep quality affect blood sugar levels?",
	"Can stress really impact my A1C levels?",
	"What supplements should I consider for better metabolic health?",
}

// Machine advances the journey one simulated week at a time. The random
// source is injected so runs are reproducible under a fixed seed. The
// mutex serializes week simulation against state reads; concurrent
// requests can hit both.
type Machine struct {
	pipeline   *conversation.Pipeline
	store      *Store
	mu         sync.Mutex
	state      *State
	memberName string
	threshold  float64
	rng        *rand.Rand
	logger     *zap.Logger
}

func NewMachine(pipeline *conversation.Pipeline, store *Store, memberName string, totalWeeks int, threshold float64, rng *rand.Rand, logger *zap.Logger) (*Machine, error) {
	state, err := store.LoadState(totalWeeks)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if memberName == "" {
		memberName = "Rohan"
	}
	return &Machine{
		pipeline:   pipeline,
		store:      store,
		state:      state,
		memberName: memberName,
		threshold:  threshold,
		rng:        rng,
		logger:     logger,
	}, nil
}

// State returns a snapshot of the current journey state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// SimulateWeek runs one full week: events, diagnostics, member messages
// through the routing pipeline, the weekly report, and write-through
// persistence. Only logging failures abort; agent-level problems degrade
// inside the pipeline.
func (m *Machine) SimulateWeek(ctx context.Context, week int) (*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := WeeklyEvents(week)
	m.logger.Info("simulating week", zap.Int("week", week), zap.Strings("events", events))

	var weekConvo []conversation.Message

	if hasEvent(events, EventQuarterlyDiagnostic) {
		scripted, err := m.runDiagnosticPanel(week, events)
		if err != nil {
			return nil, err
		}
		weekConvo = append(weekConvo, scripted...)
	}

	for _, msg := range m.weeklyMessages(events) {
		res, err := m.pipeline.Process(ctx, m.memberName, msg, map[string]any{
			"week":   week,
			"events": events,
		})
		if err != nil {
			return nil, err
		}
		weekConvo = append(weekConvo, res.Member)
		weekConvo = append(weekConvo, res.Responses...)
	}

	report, err := m.weeklyReport(week, events, weekConvo)
	if err != nil {
		return nil, err
	}

	// CurrentWeek always points at the next week to simulate.
	if week+1 > m.state.CurrentWeek {
		m.state.CurrentWeek = week + 1
	}
	if err := m.store.SaveReport(week, report); err != nil {
		return nil, err
	}
	if err := m.store.SaveState(m.state); err != nil {
		return nil, err
	}
	return report, nil
}

// RunJourney simulates every remaining week in order. onWeek, when non-nil,
// is invoked after each persisted week.
func (m *Machine) RunJourney(ctx context.Context, onWeek func(week int, r *Report)) error {
	start := m.State()
	for week := start.CurrentWeek; week <= start.TotalWeeks; week++ {
		report, err := m.SimulateWeek(ctx, week)
		if err != nil {
			return fmt.Errorf("week %d: %w", week, err)
		}
		if onWeek != nil {
			onWeek(week, report)
		}
	}
	return nil
}

// weeklyMessages generates 3-5 member messages. Event weeks repeat the
// event's fixed text; quiet weeks draw from the curiosity pool with
// replacement.
func (m *Machine) weeklyMessages(events []string) []string {
	n := 3 + m.rng.Intn(3)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case hasEvent(events, EventLegInjury):
			out = append(out, injuryMessage)
		case hasEvent(events, EventBusinessTravel):
			out = append(out, travelMessage)
		case hasEvent(events, EventQuarterlyDiagnostic):
			out = append(out, diagnosticMessage)
		default:
			out = append(out, curiosityMessages[m.rng.Intn(len(curiosityMessages))])
		}
	}
	return out
}

// labResults synthesizes the quarterly panel numbers for a week.
func (m *Machine) labResults(week int) map[string]string {
	focus := [2]string{"LDL Cholesterol", "Inflammation (hs-CRP)"}
	return map[string]string{
		"A1C":           fmt.Sprintf("%.2f", 6.2-float64(week)*0.03),
		"Triglycerides": fmt.Sprintf("%.0f", 150-float64(week)*1.5),
		"Vitamin D":     strconv.Itoa(25 + m.rng.Intn(21)),
		"Focus Area":    focus[m.rng.Intn(2)],
	}
}

// panelDelta compares the current results to the previous panel's. Numeric
// fields get a signed difference; non-numeric fields get "N/A"; fields the
// previous panel lacked get no entry.
func panelDelta(current, previous map[string]string) map[string]string {
	delta := map[string]string{}
	for key, value := range current {
		prev, ok := previous[key]
		if !ok {
			continue
		}
		cur, errCur := strconv.ParseFloat(value, 64)
		old, errOld := strconv.ParseFloat(prev, 64)
		if errCur != nil || errOld != nil {
			delta[key] = "N/A"
			continue
		}
		delta[key] = fmt.Sprintf("%+.2f", cur-old)
	}
	return delta
}

// runDiagnosticPanel records the quarterly panel in state and appends the
// scripted five-turn review conversation to the log.
func (m *Machine) runDiagnosticPanel(week int, events []string) ([]conversation.Message, error) {
	results := m.labResults(week)
	delta := map[string]string{}
	if n := len(m.state.DiagnosticPanels); n > 0 {
		delta = panelDelta(results, m.state.DiagnosticPanels[n-1].Results)
	}
	m.state.DiagnosticPanels = append(m.state.DiagnosticPanels, DiagnosticPanel{
		Week:    week,
		Results: results,
		Delta:   delta,
	})

	turns := []struct {
		id   team.ID
		text string
	}{
		{team.Coordinator, fmt.Sprintf("Hi %s, it's time for your quarterly check-in. I'll be scheduling your blood panel for next week. I'll send over the details shortly.", m.memberName)},
		{team.Coordinator, "Your phlebotomy appointment is scheduled for next Tuesday at 8 AM. Please remember to fast for 12 hours prior. No food or drink other than water."},
		{team.Medical, fmt.Sprintf("Hi %s, your lab results are in. Overall, we're seeing some great progress. Your A1C is down to %s, and your triglycerides are %s. The main area to focus on is %s. I'll loop in the team with some recommendations.", m.memberName, results["A1C"], results["Triglycerides"], results["Focus Area"])},
		{team.Medical, fmt.Sprintf("Team, here are the latest results. Please provide your recommendations. Carla, let's focus on nutrition to address the triglycerides. Rachel, please update %s's strength training plan. Advik, please check his latest wearable data for any correlations.", m.memberName)},
		{team.Nutrition, "Got it. I'll send over some meal plan adjustments."},
		{team.Physio, "Understood. I'll add a new workout to his plan for next week."},
		{team.Performance, "On it. I'll analyze his latest sleep and HRV data."},
	}

	out := make([]conversation.Message, 0, len(turns))
	for _, turn := range turns {
		spec, ok := team.Get(turn.id)
		if !ok {
			continue
		}
		logged, err := m.pipeline.Log().Append(spec.Speaker(), turn.text, map[string]any{
			"week":     week,
			"events":   events,
			"scripted": true,
		})
		if err != nil {
			return out, err
		}
		out = append(out, logged)
	}
	return out, nil
}

// adherence starts from a fixed base, penalized by travel and injury events
// plus a random real-life factor, floored at 0.
func (m *Machine) adherence(events []string) float64 {
	a := 0.85
	if hasEvent(events, EventBusinessTravel) {
		a -= 0.2
	}
	if hasEvent(events, EventLegInjury) {
		a -= 0.3
	}
	a -= m.rng.Float64() * 0.15
	return math.Max(0, a)
}

func (m *Machine) weeklyReport(week int, events []string, weekConvo []conversation.Message) (*Report, error) {
	adherence := m.adherence(events)

	if adherence < m.threshold {
		replanMsg, err := m.microReplan(week, adherence, events)
		if err != nil {
			return nil, err
		}
		weekConvo = append(weekConvo, replanMsg)
	}

	weight := 75.0
	if week > 4 {
		weight = 75 - float64(week)*0.1
	}
	return &Report{
		Week:              week,
		Events:            events,
		ConversationCount: len(weekConvo),
		AdherenceRate:     adherence,
		HealthMetrics: Metrics{
			BloodSugarAvg: math.Max(120, 180-float64(week-1)*2),
			A1C:           math.Max(5.5, 6.2-float64(week)*0.02),
			Weight:        weight,
		},
		AgentActions: AgentActions{
			DoctorHours: 8 + m.rng.Intn(8),
			CoachHours:  10 + m.rng.Intn(11),
		},
		Recommendations: extractRecommendations(m.memberName, weekConvo),
	}, nil
}

// microReplan records a plan adjustment and logs the strategic lead's
// message announcing it. Version ordinal counts replans already recorded.
func (m *Machine) microReplan(week int, adherence float64, events []string) (conversation.Message, error) {
	version := fmt.Sprintf("v%d.%d", week, len(m.state.MicroReplans)+1)
	changes := []string{
		"Shorter duration workouts (20-30 mins).",
		"Swap evening workout for a morning walk.",
		"Focus on recovery: 10 mins of stretching before bed.",
	}
	m.state.MicroReplans = append(m.state.MicroReplans, MicroReplan{
		Week:    week,
		Version: version,
		Reason:  fmt.Sprintf("Detected low adherence (%.0f%%) this week.", adherence*100),
		Changes: changes,
	})

	text := fmt.Sprintf(
		"Hi %s, I noticed things were a bit hectic this week. No problem at all, that's completely normal. "+
			"Let's adjust the plan to make it more manageable. Here's a micro-replan for the coming week (%s):\n\n"+
			"- %s\n- %s\n- %s\n\n"+
			"Let's focus on consistency, not intensity. How does this sound?",
		m.memberName, version, changes[0], changes[1], changes[2],
	)
	spec, ok := team.Get(team.StrategicLead)
	if !ok {
		return conversation.Message{}, fmt.Errorf("unknown specialist %q", team.StrategicLead)
	}
	return m.pipeline.Log().Append(spec.Speaker(), text, map[string]any{
		"week":   week,
		"events": events,
		"replan": version,
	})
}

// extractRecommendations pulls any non-member message mentioning
// "recommend", truncated to 100 characters.
func extractRecommendations(memberName string, convo []conversation.Message) []string {
	var out []string
	for _, msg := range convo {
		if msg.Sender == memberName {
			continue
		}
		if !strings.Contains(strings.ToLower(msg.Text), "recommend") {
			continue
		}
		text := msg.Text
		if len(text) > 100 {
			cut := 100
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut]
		}
		out = append(out, fmt.Sprintf("%s: %s...", msg.Sender, text))
	}
	return out
}
