package journey

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elyxhealth/careteam/internal/db"
)

// Store persists journey state and weekly reports. State is a single
// versionless JSON row; reports are keyed by week.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// LoadState returns the persisted state, or a fresh one starting at week 1
// when nothing has been saved yet. Older states missing optional fields are
// filled with empty defaults.
func (s *Store) LoadState(totalWeeks int) (*State, error) {
	var raw string
	err := s.db.QueryRow(`SELECT state_json FROM journey_state WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		st := &State{CurrentWeek: 1, TotalWeeks: totalWeeks}
		st.normalize()
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading journey state: %w", err)
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decoding journey state: %w", err)
	}
	if st.TotalWeeks == 0 {
		st.TotalWeeks = totalWeeks
	}
	st.normalize()
	return &st, nil
}

// SaveState writes the state through, replacing any previous row.
func (s *Store) SaveState(st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding journey state: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO journey_state (id, state_json, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at`,
		string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving journey state: %w", err)
	}
	return nil
}

// SaveReport persists (or overwrites) the report for a week.
func (s *Store) SaveReport(week int, r *Report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding weekly report: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO weekly_reports (week, report_json) VALUES (?, ?)
		ON CONFLICT(week) DO UPDATE SET report_json = excluded.report_json`,
		week, string(raw),
	)
	if err != nil {
		return fmt.Errorf("saving weekly report: %w", err)
	}
	return nil
}

// LoadReport returns the report for a week, or nil when none exists.
func (s *Store) LoadReport(week int) (*Report, error) {
	var raw string
	err := s.db.QueryRow(`SELECT report_json FROM weekly_reports WHERE week = ?`, week).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading weekly report: %w", err)
	}
	var r Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decoding weekly report: %w", err)
	}
	return &r, nil
}
