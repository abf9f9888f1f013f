package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dubber/internal/config"
	"dubber/internal/language"
	"dubber/internal/logging"
	"dubber/internal/services"
	"dubber/internal/stage"
)

// DefaultTarget is the language code used when none is requested.
const DefaultTarget = "fr"

// Generator sends one prompt to a language model and returns its text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Translator renders a transcript in the target language with one request.
type Translator struct {
	gen    Generator
	target string
	logger *slog.Logger
}

// New constructs a Translator. A nil generator means the credential is
// missing; every Translate call then fails with a configuration error.
func New(cfg *config.Config, gen Generator, logger *slog.Logger) *Translator {
	target := DefaultTarget
	if cfg != nil && strings.TrimSpace(cfg.Gemini.TargetLanguage) != "" {
		target = cfg.Gemini.TargetLanguage
	}
	return &Translator{
		gen:    gen,
		target: target,
		logger: logging.NewComponentLogger(logger, "translation"),
	}
}

// Prompt builds the translation request text.
func Prompt(text, targetLang string) string {
	return fmt.Sprintf("Translate the following text to %s (%s):\n%s", targetLang, language.DisplayName(targetLang), text)
}

// Translate sends the full text as a single request. Blank targetLang uses the
// configured target. Failures return an empty string and a tagged error.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(targetLang) == "" {
		targetLang = t.target
	}
	if t.gen == nil {
		return "", services.Wrap(services.ErrConfiguration, "translation", "translate", "gemini api key missing (set GOOGLE_API_KEY)", nil)
	}
	if strings.TrimSpace(text) == "" {
		return "", services.Wrap(services.ErrValidation, "translation", "translate", "empty source text", nil)
	}

	logger := logging.WithContext(ctx, t.logger)
	translated, err := t.gen.Generate(ctx, Prompt(text, targetLang))
	if err != nil {
		return "", err
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		return "", services.Wrap(services.ErrExternalTool, "translation", "translate", "empty response", nil)
	}

	logger.Info("translation completed",
		logging.String(logging.FieldEventType, "translation_complete"),
		logging.String("target_language", targetLang),
		logging.Int("source_chars", len(text)),
		logging.Int("translated_chars", len(translated)),
	)
	return translated, nil
}

// HealthCheck reports whether a translation credential is configured.
func (t *Translator) HealthCheck(context.Context) stage.Health {
	if t.gen == nil {
		return stage.Unhealthy("translation", "gemini api key missing (set GOOGLE_API_KEY)")
	}
	return stage.Healthy("translation")
}
