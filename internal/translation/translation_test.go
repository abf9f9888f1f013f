package translation

import (
	"context"
	"errors"
	"testing"

	"dubber/internal/config"
	"dubber/internal/logging"
	"dubber/internal/services"
)

type fakeGenerator struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestPrompt(t *testing.T) {
	got := Prompt("Hello.", "fr")
	want := "Translate the following text to fr (French):\nHello."
	if got != want {
		t.Fatalf("Prompt = %q, want %q", got, want)
	}
}

func TestTranslateSendsOneRequest(t *testing.T) {
	cfg := config.Default()
	gen := &fakeGenerator{reply: "  Bonjour.  "}
	tr := New(&cfg, gen, logging.NewNop())

	got, err := tr.Translate(context.Background(), "Hello.", "")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Bonjour." {
		t.Fatalf("unexpected translation %q", got)
	}
	if len(gen.prompts) != 1 || gen.prompts[0] != Prompt("Hello.", "fr") {
		t.Fatalf("unexpected prompts %q", gen.prompts)
	}
}

func TestTranslateWithoutCredential(t *testing.T) {
	tr := New(nil, nil, nil)
	got, err := tr.Translate(context.Background(), "Hello.", "fr")
	if got != "" || !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected empty result with configuration error, got %q, %v", got, err)
	}
}

func TestTranslateFailures(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		gen    *fakeGenerator
		marker error
	}{
		{name: "empty text", text: "  ", gen: &fakeGenerator{reply: "x"}, marker: services.ErrValidation},
		{name: "empty reply", text: "Hi", gen: &fakeGenerator{reply: " \n"}, marker: services.ErrExternalTool},
		{name: "network", text: "Hi", gen: &fakeGenerator{err: services.Wrap(services.ErrTransient, "translation", "gemini", "", errors.New("reset"))}, marker: services.ErrTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(nil, tt.gen, nil).Translate(context.Background(), tt.text, "fr")
			if got != "" || !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %q, %v", tt.marker, got, err)
			}
		})
	}
}
