// Package respond turns routed agent plans into specialist replies, with an
// optional schema-validated structured mode.
package respond

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/elyxhealth/careteam/internal/llm"
	"github.com/elyxhealth/careteam/internal/team"
)

// FailureSentinel is returned by RespondStructured when every attempt
// produced unusable output. Callers log it; they never treat it as a fault.
const FailureSentinel = "ERROR: unable to produce a valid structured response"

// structuredAttempts bounds the local retry loop on malformed output.
const structuredAttempts = 3

// historyLimit caps the audit history kept in memory.
const historyLimit = 200

// Exchange is one audited request/response pair.
type Exchange struct {
	Speaker   string    `json:"speaker"`
	Request   string    `json:"request"`
	Response  string    `json:"response"`
	Err       string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Responder produces specialist replies through a completion provider.
type Responder struct {
	provider    llm.Provider
	model       string
	temperature float64
	logger      *zap.Logger

	mu      sync.Mutex
	history []Exchange
}

func New(provider llm.Provider, model string, temperature float64, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{provider: provider, model: model, temperature: temperature, logger: logger}
}

// Respond runs one plain-text agent turn. Provider failures are returned to
// the caller, which records a null result for that specialist.
func (r *Responder) Respond(ctx context.Context, spec team.Specialist, msgs []llm.Message) (string, error) {
	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		Model:       r.model,
		Messages:    msgs,
		Temperature: r.temperature,
		Speaker:     spec.Speaker(),
	})
	if err != nil {
		r.record(spec.Speaker(), llm.LastUserContent(msgs), "", err)
		return "", fmt.Errorf("%s: %w", spec.ID, err)
	}
	text := strings.TrimSpace(resp.Content)
	r.record(spec.Speaker(), llm.LastUserContent(msgs), text, nil)
	return text, nil
}

// RespondStructured runs one JSON-mode agent turn and validates the output
// against schema (which may be nil). Malformed output is retried up to
// structuredAttempts times with the decode or validation error fed back as a
// corrective system note. When attempts exhaust it returns FailureSentinel,
// never an error; only provider failures surface as errors.
func (r *Responder) RespondStructured(ctx context.Context, spec team.Specialist, msgs []llm.Message, schema *Schema) (string, error) {
	working := make([]llm.Message, len(msgs))
	copy(working, msgs)

	var lastErr error
	for attempt := 1; attempt <= structuredAttempts; attempt++ {
		resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
			Model:       r.model,
			Messages:    working,
			Temperature: r.temperature,
			JSONMode:    true,
			Speaker:     spec.Speaker(),
		})
		if err != nil {
			r.record(spec.Speaker(), llm.LastUserContent(msgs), "", err)
			return "", fmt.Errorf("%s: %w", spec.ID, err)
		}

		canonical, err := decodeCanonical(resp.Content, schema)
		if err == nil {
			r.record(spec.Speaker(), llm.LastUserContent(msgs), canonical, nil)
			return canonical, nil
		}
		lastErr = err
		r.logger.Debug("structured attempt rejected",
			zap.String("specialist", string(spec.ID)),
			zap.Int("attempt", attempt),
			zap.Error(err))
		working = append(working, llm.Message{
			Role:    llm.RoleSystem,
			Content: fmt.Sprintf("Your previous reply was rejected: %v. Reply again with ONLY a single valid JSON object, no prose, no code fences.", err),
		})
	}

	r.record(spec.Speaker(), llm.LastUserContent(msgs), FailureSentinel, lastErr)
	r.logger.Warn("structured response failed",
		zap.String("specialist", string(spec.ID)),
		zap.Error(lastErr))
	return FailureSentinel, nil
}

// decodeCanonical locates the first-{-to-last-} span in raw text, decodes it,
// validates it, and re-serializes it so callers always see canonical JSON.
func decodeCanonical(raw string, schema *Schema) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in output")
	}
	var decoded any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &decoded); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(decoded); err != nil {
		return "", fmt.Errorf("schema violation: %w", err)
	}
	canonical, err := json.Marshal(decoded)
	if err != nil {
		return "", err
	}
	return string(canonical), nil
}

func (r *Responder) record(speaker, request, response string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := Exchange{Speaker: speaker, Request: request, Response: response, Timestamp: time.Now().UTC()}
	if err != nil {
		e.Err = err.Error()
	}
	r.history = append(r.history, e)
	if len(r.history) > historyLimit {
		r.history = r.history[len(r.history)-historyLimit:]
	}
}

// History returns a copy of the audit history.
func (r *Responder) History() []Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Exchange, len(r.history))
	copy(out, r.history)
	return out
}
