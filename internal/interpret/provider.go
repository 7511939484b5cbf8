package interpret

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pbaille/zhouyi/internal/oracle"
)

var (
	// ErrMissingAPIKey is returned when a provider has no API key.
	ErrMissingAPIKey = errors.New("api key not set")
	// ErrUnknownProvider is returned for provider names New does not know.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrEmptyResponse is returned when a provider answers with no text.
	ErrEmptyResponse = errors.New("empty response")
)

// Request is what a provider is asked to interpret.
type Request struct {
	Question string
	Hexagram oracle.Hexagram
	Relating *oracle.Hexagram
	Changing []int
	Language oracle.Language
}

// RequestFromResult builds a request from a resolved cast.
func RequestFromResult(r oracle.Result, lang oracle.Language) Request {
	return Request{
		Question: r.Question,
		Hexagram: r.Hexagram,
		Relating: r.Relating,
		Changing: r.Changing,
		Language: lang,
	}
}

// Provider turns a request into free-form interpretation text.
type Provider interface {
	Name() string
	Interpret(ctx context.Context, req Request) (string, error)
}

// ProviderError describes a failed provider call.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Provider)
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": api error (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Auth reports whether the provider rejected the credentials.
func (e *ProviderError) Auth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Config selects and configures a provider.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func (c Config) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// New creates the provider named in cfg.
func New(cfg Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch name {
	case "offline", "none":
		return Offline{}, nil
	case "anthropic", "openai", "grok", "gemini":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingAPIKey)
	}
	switch name {
	case "anthropic":
		return NewAnthropic(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	case "grok":
		return NewGrok(cfg), nil
	default:
		return NewGemini(cfg), nil
	}
}
