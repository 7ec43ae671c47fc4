package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// openrouterTransport injects the OpenRouter-recommended attribution
// headers (HTTP-Referer and X-Title) into every request.
type openrouterTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *openrouterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.referer != "" {
		clone.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		clone.Header.Set("X-Title", t.title)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// OpenRouterOptions configures the OpenRouter provider.
type OpenRouterOptions struct {
	APIKey      string
	Model       string
	BaseURL     string
	Referer     string
	Title       string
	Temperature float64
	Timeout     time.Duration
}

// OpenRouterProvider implements Provider using the OpenRouter API
// (OpenAI-compatible).
type OpenRouterProvider struct {
	client      *openai.Client
	model       string
	temperature float64
}

// NewOpenRouterProvider creates a new OpenRouter provider.
func NewOpenRouterProvider(opts OpenRouterOptions) *OpenRouterProvider {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	} else {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	cfg.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &openrouterTransport{
			referer: opts.Referer,
			title:   opts.Title,
		},
	}

	return &OpenRouterProvider{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		temperature: opts.Temperature,
	}
}

func (p *OpenRouterProvider) Name() string {
	return "openrouter"
}

func (p *OpenRouterProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.temperature
	}

	var messages []openai.ChatCompletionMessage
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(temperature),
	}

	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, translateError(err)
	}

	var content string
	var finishReason string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = string(resp.Choices[0].FinishReason)
	}

	return &CompletionResponse{
		Content:      content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		FinishReason: finishReason,
	}, nil
}

// translateError converts go-openai request errors into the package's
// status-carrying error type so the retry layer can classify them.
func translateError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewAPIStatusError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewAPIStatusError(reqErr.HTTPStatusCode, reqErr.Error())
	}
	return err
}
