package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dubber/internal/config"
	"dubber/internal/language"
	"dubber/internal/logging"
	"dubber/internal/services"
	"dubber/internal/services/elevenlabs"
	"dubber/internal/stage"
)

// ErrNoVoice is returned when no available voice speaks the target language.
var ErrNoVoice = errors.New("no voice for target language")

// Backend is the speech synthesis API.
type Backend interface {
	HasCredential() bool
	ListVoices(ctx context.Context) ([]elevenlabs.Voice, error)
	TextToSpeech(ctx context.Context, voiceID, text string, w io.Writer) (int64, error)
}

// Synthesizer voices translated text with the first voice verified for the
// target language.
type Synthesizer struct {
	backend  Backend
	language string
	logger   *slog.Logger
}

// New constructs a Synthesizer.
func New(cfg *config.Config, backend Backend, logger *slog.Logger) *Synthesizer {
	lang := "fr"
	if cfg != nil && strings.TrimSpace(cfg.ElevenLabs.VoiceLanguage) != "" {
		lang = cfg.ElevenLabs.VoiceLanguage
	}
	return &Synthesizer{
		backend:  backend,
		language: lang,
		logger:   logging.NewComponentLogger(logger, "speech"),
	}
}

// NewElevenLabsBackend builds the default backend from configuration.
func NewElevenLabsBackend(cfg *config.Config) *elevenlabs.Client {
	return elevenlabs.NewClient(elevenlabs.Config{
		APIKey:         cfg.ElevenLabs.APIKey,
		BaseURL:        cfg.ElevenLabs.BaseURL,
		ModelID:        cfg.ElevenLabs.ModelID,
		OutputFormat:   cfg.ElevenLabs.OutputFormat,
		TimeoutSeconds: cfg.ElevenLabs.TimeoutSeconds,
	})
}

// SelectVoice returns the first voice declaring a verified language whose
// base matches lang.
func SelectVoice(voices []elevenlabs.Voice, lang string) (elevenlabs.Voice, bool) {
	for _, voice := range voices {
		for _, verified := range voice.VerifiedLanguages {
			if language.Matches(verified.Language, lang) || language.Matches(verified.Locale, lang) {
				return voice, true
			}
		}
	}
	return elevenlabs.Voice{}, false
}

// Synthesize writes the spoken text to <outputDir>/<uuid>.mp3 and returns the
// path. On any failure it returns an empty path and removes partial output.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outputDir string) (string, error) {
	if s.backend == nil || !s.backend.HasCredential() {
		return "", services.Wrap(services.ErrConfiguration, "speech", "synthesize", "elevenlabs api key missing (set ELEVENLABS_API_KEY)", nil)
	}
	if strings.TrimSpace(text) == "" {
		return "", services.Wrap(services.ErrValidation, "speech", "synthesize", "empty text", nil)
	}
	logger := logging.WithContext(ctx, s.logger)

	voices, err := s.backend.ListVoices(ctx)
	if err != nil {
		return "", classify("list voices", err)
	}
	voice, ok := SelectVoice(voices, s.language)
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "speech", "select voice",
			fmt.Sprintf("none of %d voices is verified for %q", len(voices), s.language), ErrNoVoice)
	}
	logger.Info("voice selected",
		logging.String(logging.FieldEventType, "voice_selected"),
		logging.String("voice_id", voice.VoiceID),
		logging.String("voice_name", voice.Name),
	)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "speech", "synthesize", "create output dir", err)
	}
	path := filepath.Join(outputDir, uuid.NewString()+".mp3")
	file, err := os.Create(path)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "speech", "synthesize", "create output file", err)
	}

	n, ttsErr := s.backend.TextToSpeech(ctx, voice.VoiceID, text, file)
	closeErr := file.Close()
	switch {
	case ttsErr != nil:
		_ = os.Remove(path)
		return "", classify("text to speech", ttsErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", services.Wrap(services.ErrExternalTool, "speech", "synthesize", "write audio", closeErr)
	case n == 0:
		_ = os.Remove(path)
		return "", services.Wrap(services.ErrExternalTool, "speech", "text to speech", "empty audio response", nil)
	}

	logger.Info("speech synthesized",
		logging.String(logging.FieldEventType, "speech_complete"),
		logging.String("path", path),
		logging.Int64("bytes", n),
	)
	return path, nil
}

func classify(op string, err error) error {
	var statusErr *elevenlabs.StatusError
	switch {
	case errors.Is(err, elevenlabs.ErrMissingAPIKey):
		return services.Wrap(services.ErrConfiguration, "speech", op, "", err)
	case errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden):
		return services.Wrap(services.ErrConfiguration, "speech", op, "credential rejected", err)
	case errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500):
		return services.Wrap(services.ErrTransient, "speech", op, "", err)
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "speech", op, "", err)
	default:
		return services.Wrap(services.ErrExternalTool, "speech", op, "", err)
	}
}

// HealthCheck reports whether a synthesis credential is configured.
func (s *Synthesizer) HealthCheck(context.Context) stage.Health {
	if s.backend == nil || !s.backend.HasCredential() {
		return stage.Unhealthy("speech", "elevenlabs api key missing (set ELEVENLABS_API_KEY)")
	}
	return stage.Healthy("speech")
}
