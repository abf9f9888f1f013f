package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL      = "https://api.elevenlabs.io"
	defaultModelID      = "eleven_multilingual_v2"
	defaultOutputFormat = "mp3_22050_32"
	defaultHTTPTimeout  = 60 * time.Second
	apiKeyHeader        = "xi-api-key"
	maxErrorBody        = 4 << 10
)

// ErrMissingAPIKey is returned when a request is attempted without a credential.
var ErrMissingAPIKey = errors.New("elevenlabs: api key missing")

// Config captures the runtime settings required to talk to ElevenLabs.
type Config struct {
	APIKey         string
	BaseURL        string
	ModelID        string
	OutputFormat   string
	TimeoutSeconds int
}

// Client wraps the ElevenLabs voices and text-to-speech endpoints.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:       strings.TrimSpace(cfg.APIKey),
			BaseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			ModelID:      strings.TrimSpace(cfg.ModelID),
			OutputFormat: strings.TrimSpace(cfg.OutputFormat),
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.ModelID == "" {
		client.cfg.ModelID = defaultModelID
	}
	if client.cfg.OutputFormat == "" {
		client.cfg.OutputFormat = defaultOutputFormat
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.cfg.APIKey != ""
}

// VerifiedLanguage is a language a voice has been verified to speak.
type VerifiedLanguage struct {
	Language string `json:"language"`
	ModelID  string `json:"model_id"`
	Accent   string `json:"accent"`
	Locale   string `json:"locale"`
}

// Voice describes one entry from the voices listing.
type Voice struct {
	VoiceID           string             `json:"voice_id"`
	Name              string             `json:"name"`
	Category          string             `json:"category"`
	VerifiedLanguages []VerifiedLanguage `json:"verified_languages"`
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("elevenlabs request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// ListVoices returns the voices available to the account in listing order.
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "v1", "voices")
	if err != nil {
		return nil, fmt.Errorf("elevenlabs voices: build url: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs voices: %w", err)
	}
	defer resp.Body.Close()

	var payload voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("elevenlabs voices: decode: %w", err)
	}
	return payload.Voices, nil
}

// TextToSpeech synthesizes text with voiceID and streams the encoded audio to w.
// It returns the number of bytes written.
func (c *Client) TextToSpeech(ctx context.Context, voiceID, text string, w io.Writer) (int64, error) {
	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" {
		return 0, errors.New("elevenlabs tts: voice id required")
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "v1", "text-to-speech", voiceID)
	if err != nil {
		return 0, fmt.Errorf("elevenlabs tts: build url: %w", err)
	}
	endpoint += "?" + url.Values{"output_format": {c.cfg.OutputFormat}}.Encode()

	body, err := json.Marshal(ttsRequest{Text: text, ModelID: c.cfg.ModelID})
	if err != nil {
		return 0, fmt.Errorf("elevenlabs tts: encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.do(req)
	if err != nil {
		return 0, fmt.Errorf("elevenlabs tts: %w", err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("elevenlabs tts: read audio: %w", err)
	}
	return n, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return resp, nil
}
