package interpret

import (
	"context"
	"strings"
)

const anthropicAPI = "https://api.anthropic.com/v1/messages"

// Anthropic interprets via the Anthropic messages API.
type Anthropic struct {
	cfg Config
}

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(cfg Config) *Anthropic {
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = anthropicAPI
	}
	cfg.HTTPClient = cfg.client()
	return &Anthropic{cfg: cfg}
}

func (a *Anthropic) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Interpret sends the prompt and returns the concatenated text blocks.
func (a *Anthropic) Interpret(ctx context.Context, req Request) (string, error) {
	body := anthropicRequest{
		Model:     a.cfg.Model,
		MaxTokens: 2048,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildPrompt(req)},
		},
	}
	headers := map[string]string{
		"x-api-key":         a.cfg.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var resp anthropicResponse
	if err := postJSON(ctx, a.cfg.HTTPClient, a.Name(), a.cfg.Endpoint, headers, body, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", &ProviderError{Provider: a.Name(), Message: resp.Error.Message}
	}

	var sb strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", &ProviderError{Provider: a.Name(), Err: ErrEmptyResponse}
	}
	return sb.String(), nil
}
