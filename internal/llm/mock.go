package llm

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// mockEchoLen bounds how much of the last user turn the mock echoes back.
const mockEchoLen = 160

// MockProvider returns deterministic templated acknowledgments without any
// network call, so the whole pipeline runs and tests without credentials.
type MockProvider struct {
	fallbackSpeaker string
}

// NewMockProvider creates a mock provider. fallbackSpeaker is used when a
// request does not name its speaker.
func NewMockProvider(fallbackSpeaker string) *MockProvider {
	if fallbackSpeaker == "" {
		fallbackSpeaker = "careteam"
	}
	return &MockProvider{fallbackSpeaker: fallbackSpeaker}
}

func (p *MockProvider) Name() string {
	return "mock"
}

func (p *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	speaker := req.Speaker
	if speaker == "" {
		speaker = p.fallbackSpeaker
	}

	last := LastUserContent(req.Messages)
	if len(last) > mockEchoLen {
		// Back up to a rune boundary so the echo stays valid UTF-8.
		cut := mockEchoLen
		for cut > 0 && !utf8.RuneStart(last[cut]) {
			cut--
		}
		last = last[:cut]
	}

	content := fmt.Sprintf("[%s] Acknowledged: %s", speaker, last)
	return &CompletionResponse{
		Content:      content,
		Model:        "mock",
		FinishReason: "stop",
	}, nil
}
