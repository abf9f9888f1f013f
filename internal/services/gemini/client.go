package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"dubber/internal/services"
)

// DefaultModel is used when Config.Model is blank.
const DefaultModel = "gemini-1.5-flash"

// ErrMissingAPIKey is returned when no Gemini credential is configured.
var ErrMissingAPIKey = errors.New("gemini: api key missing")

// Config captures Gemini client settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// ContentGenerator is the slice of the genai Models service the client uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client sends single-turn text prompts to Gemini.
type Client struct {
	model     string
	generator ContentGenerator
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	generator  ContentGenerator
}

// WithHTTPClient overrides the HTTP client handed to the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithGenerator bypasses the SDK entirely (tests).
func WithGenerator(gen ContentGenerator) Option {
	return func(o *options) { o.generator = gen }
}

// NewClient constructs a Gemini client. A blank API key is a configuration error.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	if o.generator != nil {
		return &Client{model: model, generator: o.generator}, nil
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "translation", "gemini client", "set GOOGLE_API_KEY", ErrMissingAPIKey)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.httpClient != nil {
		clientCfg.HTTPClient = o.httpClient
	} else if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	sdk, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "translation", "gemini client", "", err)
	}
	return &Client{model: model, generator: sdk.Models}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as one user turn and returns the trimmed response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generator.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classify(err)
	}
	if resp == nil {
		return "", services.Wrap(services.ErrExternalTool, "translation", "gemini generate", "empty response", nil)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", services.Wrap(services.ErrExternalTool, "translation", "gemini generate", "empty response", nil)
	}
	return text, nil
}

func classify(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusBadRequest, apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, "translation", "gemini generate", fmt.Sprintf("rejected (%d)", apiErr.Code), err)
		case apiErr.Code == http.StatusTooManyRequests, apiErr.Code >= 500:
			return services.Wrap(services.ErrTransient, "translation", "gemini generate", fmt.Sprintf("unavailable (%d)", apiErr.Code), err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "translation", "gemini generate", "", err)
	}
	return services.Wrap(services.ErrExternalTool, "translation", "gemini generate", "", err)
}
