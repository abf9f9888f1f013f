package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dubber/internal/config"
	"dubber/internal/logging"
	"dubber/internal/services/whisperx"
	"dubber/internal/stage"
)

// PlaceholderTranscript is returned whenever speech-to-text is unavailable or fails.
const PlaceholderTranscript = "Hello, this is a test transcript. Please install Whisper for proper transcription."

// Status distinguishes a real transcript from the placeholder.
type Status string

const (
	StatusTranscribed Status = "transcribed"
	StatusPlaceholder Status = "placeholder"
)

// Segment is a timed span of transcript text, half-open [Start, End) in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the outcome of one transcription. Placeholder results carry the
// fixed text, no segments, and the reason the capability was not used.
type Result struct {
	Text     string
	Segments []Segment
	Status   Status
	Reason   string
}

// AudioExtractor decodes a video's audio to a WAV file.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath, dest string) error
}

// Engine performs speech-to-text on a WAV file.
type Engine interface {
	Available() bool
	TranscribeFile(ctx context.Context, source, outputDir, language string) (whisperx.TranscribeResult, error)
}

// Transcriber turns a video's speech into text.
type Transcriber struct {
	audio    AudioExtractor
	engine   Engine
	language string
	tempRoot string
	logger   *slog.Logger
}

// Option configures a Transcriber.
type Option func(*Transcriber)

// WithTempRoot sets the parent directory for per-call scratch directories.
func WithTempRoot(dir string) Option {
	return func(t *Transcriber) { t.tempRoot = dir }
}

// New constructs a Transcriber. A nil engine always yields the placeholder.
func New(cfg *config.Config, audio AudioExtractor, engine Engine, logger *slog.Logger, opts ...Option) *Transcriber {
	language := "en"
	if cfg != nil && strings.TrimSpace(cfg.Transcription.Language) != "" {
		language = cfg.Transcription.Language
	}
	t := &Transcriber{
		audio:    audio,
		engine:   engine,
		language: language,
		logger:   logging.NewComponentLogger(logger, "transcription"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewWhisperXEngine builds the default engine from configuration.
func NewWhisperXEngine(cfg *config.Config) *whisperx.Service {
	return whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.Model,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		UVXBinary:   cfg.Tools.UVX,
	})
}

// Transcribe extracts audio from videoPath and runs speech-to-text. It never
// fails: any unavailability or error yields the placeholder result. Scratch
// audio and engine output are removed on every path.
func (t *Transcriber) Transcribe(ctx context.Context, videoPath string) Result {
	logger := logging.WithContext(ctx, t.logger)

	text, segments, err := t.transcribe(ctx, videoPath)
	if err != nil {
		logging.WarnWithContext(logger, "transcription unavailable; using placeholder transcript", "transcription_placeholder",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install uvx to enable WhisperX"),
			logging.String(logging.FieldImpact, "dub is generated from placeholder text"),
		)
		return Placeholder(err.Error())
	}

	logger.Info("transcription completed",
		logging.String(logging.FieldEventType, "transcription_complete"),
		logging.Int("segments", len(segments)),
		logging.Int("characters", len(text)),
	)
	return Result{Text: text, Segments: segments, Status: StatusTranscribed}
}

func (t *Transcriber) transcribe(ctx context.Context, videoPath string) (string, []Segment, error) {
	if t.engine == nil || !t.engine.Available() {
		return "", nil, errors.New("speech-to-text engine not installed")
	}
	if t.audio == nil {
		return "", nil, errors.New("audio extractor not configured")
	}

	workDir, err := os.MkdirTemp(t.tempRoot, "transcribe-*")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	wav := filepath.Join(workDir, "audio.wav")
	if err := t.audio.ExtractAudio(ctx, videoPath, wav); err != nil {
		return "", nil, err
	}

	out, err := t.engine.TranscribeFile(ctx, wav, filepath.Join(workDir, "out"), t.language)
	if err != nil {
		return "", nil, err
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", nil, errors.New("transcript is empty")
	}

	segments := make([]Segment, 0, len(out.Segments))
	for _, seg := range out.Segments {
		segText := strings.TrimSpace(seg.Text)
		if segText == "" || seg.End <= seg.Start {
			continue
		}
		segments = append(segments, Segment{Start: seg.Start, End: seg.End, Text: segText})
	}
	return text, segments, nil
}

// Placeholder builds the fixed fallback result.
func Placeholder(reason string) Result {
	return Result{
		Text:     PlaceholderTranscript,
		Segments: []Segment{},
		Status:   StatusPlaceholder,
		Reason:   reason,
	}
}

// HealthCheck reports whether real transcription is possible.
func (t *Transcriber) HealthCheck(context.Context) stage.Health {
	if t.engine == nil || !t.engine.Available() {
		return stage.Degraded("transcription", "speech-to-text not installed; placeholder transcript will be used")
	}
	return stage.Healthy("transcription")
}
