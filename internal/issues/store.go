// Package issues persists health issues detected by the router and
// auto-closes them when later messages report recovery.
package issues

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/db"
	"github.com/elyxhealth/careteam/internal/extract"
)

const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// Issue is one stored health issue row.
type Issue struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Details          string         `json:"details"`
	Category         string         `json:"category"`
	Severity         string         `json:"severity"`
	Status           string         `json:"status"`
	ProgressPercent  int            `json:"progress_percent"`
	Priority         string         `json:"priority"`
	SuggestedOwner   string         `json:"suggested_owner"`
	Confidence       float64        `json:"confidence"`
	Entities         map[string]any `json:"entities"`
	ResolveReference string         `json:"resolve_reference,omitempty"`
	TriggeredBy      string         `json:"triggered_by,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	LastReviewedAt   time.Time      `json:"last_reviewed_at"`
}

// Store is the sqlite-backed issue store.
type Store struct {
	db     *db.DB
	logger *zap.Logger
}

func NewStore(database *db.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: database, logger: logger}
}

func priorityFor(severity string) string {
	switch severity {
	case "high":
		return "P1"
	case "medium":
		return "P2"
	default:
		return "P3"
	}
}

// AddMany inserts new issues, skipping any whose title matches an already
// open issue (case-insensitive). Returns the number inserted.
func (s *Store) AddMany(items []*extract.HealthIssue, triggeredBy string) (int, error) {
	inserted := 0
	now := time.Now().UTC()
	for _, it := range items {
		if it == nil || strings.TrimSpace(it.Title) == "" {
			continue
		}
		var exists int
		err := s.db.QueryRow(
			`SELECT COUNT(1) FROM issues WHERE status = ? AND lower(title) = lower(?)`,
			StatusOpen, it.Title,
		).Scan(&exists)
		if err != nil {
			return inserted, fmt.Errorf("checking duplicate issue: %w", err)
		}
		if exists > 0 {
			continue
		}

		entities, err := json.Marshal(it.DetectedEntities)
		if err != nil {
			entities = []byte("{}")
		}
		id := it.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err = s.db.Exec(`
			INSERT INTO issues
				(id, title, details, category, severity, status, progress_percent,
				 priority, suggested_owner, confidence, entities_json, triggered_by,
				 created_at, last_reviewed_at)
			VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?, ?)`,
			id, it.Title, it.Details, it.Category, it.Severity, StatusOpen,
			priorityFor(it.Severity), string(it.SuggestedOwner), it.Confidence,
			string(entities), triggeredBy, now, now,
		)
		if err != nil {
			return inserted, fmt.Errorf("inserting issue %q: %w", it.Title, err)
		}
		inserted++
	}
	if inserted > 0 {
		s.logger.Info("issues recorded", zap.Int("count", inserted), zap.String("triggered_by", triggeredBy))
	}
	return inserted, nil
}

// List returns issues, optionally filtered by status ("" means all), newest
// first.
func (s *Store) List(status string) ([]Issue, error) {
	query := `
		SELECT id, title, details, category, severity, status, progress_percent,
		       COALESCE(priority, ''), COALESCE(suggested_owner, ''), confidence,
		       entities_json, COALESCE(resolve_reference, ''), COALESCE(triggered_by, ''),
		       created_at, last_reviewed_at
		FROM issues`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	defer rows.Close()

	var out []Issue
	for rows.Next() {
		var it Issue
		var entities string
		if err := rows.Scan(
			&it.ID, &it.Title, &it.Details, &it.Category, &it.Severity, &it.Status,
			&it.ProgressPercent, &it.Priority, &it.SuggestedOwner, &it.Confidence,
			&entities, &it.ResolveReference, &it.TriggeredBy,
			&it.CreatedAt, &it.LastReviewedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		if err := json.Unmarshal([]byte(entities), &it.Entities); err != nil {
			it.Entities = map[string]any{}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateProgress sets an issue's completion percentage. Reaching 100 marks
// the issue resolved.
func (s *Store) UpdateProgress(id string, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	status := StatusOpen
	if percent == 100 {
		status = StatusResolved
	}
	res, err := s.db.Exec(
		`UPDATE issues SET progress_percent = ?, status = ?, last_reviewed_at = ? WHERE id = ?`,
		percent, status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating issue progress: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// improvementMarkers are phrases in a member message that suggest a
// previously reported issue has eased.
var improvementMarkers = []string{
	"better", "improved", "improving", "resolved", "healed",
	"recovered", "no longer", "gone", "subsided", "pain free",
}

// CloseByText resolves open issues that a free-text update plausibly refers
// to. The text must carry an improvement marker; candidate issues are scored
// by word overlap with their title and details (words longer than 3 chars),
// plus 2 when the issue's category appears in the text. Issues scoring at
// least 1 are resolved at 100% with the text recorded as the resolve
// reference. Returns the resolved issues.
func (s *Store) CloseByText(text, reference string) ([]Issue, error) {
	lower := strings.ToLower(text)
	marked := false
	for _, m := range improvementMarkers {
		if strings.Contains(lower, m) {
			marked = true
			break
		}
	}
	if !marked {
		return nil, nil
	}

	open, err := s.List(StatusOpen)
	if err != nil {
		return nil, err
	}
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(w) > 3 {
			words[w] = true
		}
	}

	var closed []Issue
	now := time.Now().UTC()
	for _, it := range open {
		score := 0
		for _, w := range strings.Fields(strings.ToLower(it.Title + " " + it.Details)) {
			w = strings.Trim(w, ".,;:!?")
			if len(w) > 3 && words[w] {
				score++
			}
		}
		if it.Category != "" && it.Category != "other" && strings.Contains(lower, it.Category) {
			score += 2
		}
		if score < 1 {
			continue
		}
		_, err := s.db.Exec(`
			UPDATE issues
			SET status = ?, progress_percent = 100, resolve_reference = ?, last_reviewed_at = ?
			WHERE id = ?`,
			StatusResolved, reference, now, it.ID,
		)
		if err != nil {
			return closed, fmt.Errorf("resolving issue %q: %w", it.Title, err)
		}
		it.Status = StatusResolved
		it.ProgressPercent = 100
		it.ResolveReference = reference
		closed = append(closed, it)
		s.logger.Info("issue auto-resolved",
			zap.String("title", it.Title),
			zap.Int("score", score))
	}
	return closed, nil
}
