package interpret

import (
	"context"
	"strings"
)

const geminiAPI = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini interprets via the Gemini generateContent API.
type Gemini struct {
	cfg Config
}

// NewGemini creates a Gemini provider. Endpoint is the models base URL.
func NewGemini(cfg Config) *Gemini {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash-lite"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = geminiAPI
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	cfg.HTTPClient = cfg.client()
	return &Gemini{cfg: cfg}
}

func (g *Gemini) Name() string { return "gemini" }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Interpret sends the prompt and joins the first candidate's parts.
func (g *Gemini) Interpret(ctx context.Context, req Request) (string, error) {
	url := g.cfg.Endpoint + "/" + g.cfg.Model + ":generateContent"
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: BuildPrompt(req)}}}},
	}
	headers := map[string]string{"x-goog-api-key": g.cfg.APIKey}

	var resp geminiResponse
	if err := postJSON(ctx, g.cfg.HTTPClient, g.Name(), url, headers, body, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", &ProviderError{Provider: g.Name(), StatusCode: resp.Error.Code, Message: resp.Error.Message}
	}
	if len(resp.Candidates) == 0 {
		return "", &ProviderError{Provider: g.Name(), Err: ErrEmptyResponse}
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", &ProviderError{Provider: g.Name(), Err: ErrEmptyResponse}
	}
	return sb.String(), nil
}
