package interpret

import (
	"context"
	"strings"
)

const (
	openAIAPI = "https://api.openai.com/v1/chat/completions"
	xaiAPI    = "https://api.x.ai/v1/chat/completions"
)

// OpenAI interprets via an OpenAI-compatible chat completions endpoint.
// Grok uses the same wire format under a different name and URL.
type OpenAI struct {
	name string
	cfg  Config
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = openAIAPI
	}
	cfg.HTTPClient = cfg.client()
	return &OpenAI{name: "openai", cfg: cfg}
}

// NewGrok creates an xAI Grok provider.
func NewGrok(cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = "grok-4-1-fast-non-reasoning"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = xaiAPI
	}
	cfg.HTTPClient = cfg.client()
	return &OpenAI{name: "grok", cfg: cfg}
}

func (o *OpenAI) Name() string { return o.name }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Interpret sends the prompt and returns the first choice.
func (o *OpenAI) Interpret(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model:    o.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: BuildPrompt(req)}},
	}
	headers := map[string]string{"Authorization": "Bearer " + o.cfg.APIKey}

	var resp chatResponse
	if err := postJSON(ctx, o.cfg.HTTPClient, o.name, o.cfg.Endpoint, headers, body, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", &ProviderError{Provider: o.name, Message: resp.Error.Message}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &ProviderError{Provider: o.name, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}
