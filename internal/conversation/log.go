// Package conversation stores the append-only message record and runs the
// member chat pipeline.
package conversation

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elyxhealth/careteam/internal/db"
)

// Message is one logged conversation turn. Immutable once appended.
type Message struct {
	ID        string         `json:"id"`
	Seq       int64          `json:"seq"`
	Sender    string         `json:"sender"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	Context   map[string]any `json:"context,omitempty"`
}

// Log is the sqlite-backed append-only conversation record.
type Log struct {
	db *db.DB

	mu   sync.Mutex
	next int64
}

func NewLog(database *db.DB) (*Log, error) {
	l := &Log{db: database}
	var max int64
	err := database.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM conversation_messages`).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("reading last sequence: %w", err)
	}
	l.next = max + 1
	return l, nil
}

// Append records a message and returns it with id, seq, and timestamp set.
func (l *Log) Append(sender, text string, msgCtx map[string]any) (Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if msgCtx == nil {
		msgCtx = map[string]any{}
	}
	ctxJSON, err := json.Marshal(msgCtx)
	if err != nil {
		return Message{}, fmt.Errorf("serializing message context: %w", err)
	}
	m := Message{
		ID:        uuid.NewString(),
		Seq:       l.next,
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UTC(),
		Context:   msgCtx,
	}
	_, err = l.db.Exec(`
		INSERT INTO conversation_messages (id, seq, sender, text, timestamp, context_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Seq, m.Sender, m.Text, m.Timestamp, string(ctxJSON),
	)
	if err != nil {
		return Message{}, fmt.Errorf("appending message: %w", err)
	}
	l.next++
	return m, nil
}

// History returns all messages in append order.
func (l *Log) History() ([]Message, error) {
	rows, err := l.db.Query(`
		SELECT id, seq, sender, text, timestamp, context_json
		FROM conversation_messages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var ctxJSON string
		if err := rows.Scan(&m.ID, &m.Seq, &m.Sender, &m.Text, &m.Timestamp, &ctxJSON); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if err := json.Unmarshal([]byte(ctxJSON), &m.Context); err != nil {
			m.Context = map[string]any{}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Since returns messages with seq >= from, in append order.
func (l *Log) Since(from int64) ([]Message, error) {
	all, err := l.History()
	if err != nil {
		return nil, err
	}
	for i, m := range all {
		if m.Seq >= from {
			return all[i:], nil
		}
	}
	return nil, nil
}
