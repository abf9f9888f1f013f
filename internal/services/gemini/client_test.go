package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"dubber/internal/services"
)

type fakeGenerator struct {
	model  string
	prompt string
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{APIKey: "  "})
	if !errors.Is(err, services.ErrConfiguration) || !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestGenerateTrimsResponse(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("  Bonjour le monde.\n")}
	client, err := NewClient(context.Background(), Config{}, WithGenerator(gen))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := client.Generate(context.Background(), "Translate this")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Bonjour le monde." {
		t.Fatalf("unexpected text %q", got)
	}
	if gen.model != DefaultModel || gen.prompt != "Translate this" {
		t.Fatalf("unexpected request model=%q prompt=%q", gen.model, gen.prompt)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		gen    *fakeGenerator
		marker error
	}{
		{name: "empty", gen: &fakeGenerator{resp: textResponse("   ")}, marker: services.ErrExternalTool},
		{name: "nil response", gen: &fakeGenerator{}, marker: services.ErrExternalTool},
		{name: "transport", gen: &fakeGenerator{err: errors.New("dial tcp: connection refused")}, marker: services.ErrExternalTool},
		{name: "deadline", gen: &fakeGenerator{err: context.DeadlineExceeded}, marker: services.ErrTimeout},
		{name: "auth", gen: &fakeGenerator{err: &genai.APIError{Code: http.StatusForbidden, Message: "denied"}}, marker: services.ErrConfiguration},
		{name: "quota", gen: &fakeGenerator{err: &genai.APIError{Code: http.StatusTooManyRequests}}, marker: services.ErrTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), Config{Model: "m"}, WithGenerator(tt.gen))
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			got, err := client.Generate(context.Background(), "p")
			if got != "" || !errors.Is(err, tt.marker) {
				t.Fatalf("expected empty result with %v, got %q, %v", tt.marker, got, err)
			}
		})
	}
}

func TestGenerateAgainstHTTPServer(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Salut"}]}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "k", Model: "gemini-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := client.Generate(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Salut" {
		t.Fatalf("unexpected text %q", got)
	}
	if !strings.HasSuffix(gotPath, "models/gemini-test:generateContent") {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotKey != "k" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
}
