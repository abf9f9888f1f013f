package textdetect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dubber/internal/config"
	"dubber/internal/language"
	"dubber/internal/logging"
	"dubber/internal/media/ffprobe"
	"dubber/internal/services/tesseract"
	"dubber/internal/stage"
)

// Status classifies a detection run.
type Status string

const (
	StatusDetected Status = "detected"
	StatusNoText   Status = "no_text"
	StatusFailed   Status = "failed"
)

// Frame is a sampled frame that carried text.
type Frame struct {
	Index int
	Text  string
}

// Offset returns the frame's position in the video for the given interval.
func (f Frame) Offset(interval time.Duration) time.Duration {
	return time.Duration(f.Index) * interval
}

// Result is the outcome of Detect. Frames is empty unless Status is StatusDetected.
type Result struct {
	Frames  []Frame
	Sampled int
	Status  Status
	Err     error
}

// FrameExtractor writes the frame at offset to a PNG.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string, offset time.Duration, dest string) error
}

// Recognizer reads text from an image.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// DurationProbe returns a video's duration in seconds.
type DurationProbe func(ctx context.Context, videoPath string) (float64, error)

// Detector samples frames at a fixed interval and reads text from each.
type Detector struct {
	interval time.Duration
	probe    DurationProbe
	frames   FrameExtractor
	ocr      Recognizer
	logger   *slog.Logger
}

// New constructs a Detector. A non-positive interval falls back to one second.
func New(interval time.Duration, probe DurationProbe, frames FrameExtractor, ocr Recognizer, logger *slog.Logger) *Detector {
	if interval <= 0 {
		interval = time.Second
	}
	return &Detector{
		interval: interval,
		probe:    probe,
		frames:   frames,
		ocr:      ocr,
		logger:   logging.NewComponentLogger(logger, "textdetect"),
	}
}

// NewFromConfig wires ffprobe and tesseract from configuration.
func NewFromConfig(cfg *config.Config, frames FrameExtractor, logger *slog.Logger) *Detector {
	probe := func(ctx context.Context, videoPath string) (float64, error) {
		return ffprobe.VideoDuration(ctx, cfg.Tools.FFprobe, videoPath)
	}
	ocr := tesseract.New(cfg.Tools.Tesseract, language.TesseractCode(cfg.Detection.Language), cfg.DetectionTimeout())
	return New(cfg.DetectionInterval(), probe, frames, ocr, logger)
}

// Interval returns the sampling interval.
func (d *Detector) Interval() time.Duration {
	return d.interval
}

// SampleCount returns floor(duration / interval).
func SampleCount(duration float64, interval time.Duration) int {
	if duration <= 0 || interval <= 0 {
		return 0
	}
	return int(math.Floor(duration / interval.Seconds()))
}

// Detect samples videoPath and returns the frames with non-empty text in
// ascending index order. Frame images live under scratchDir (the system temp
// dir when empty) only for the duration of each recognition call.
func (d *Detector) Detect(ctx context.Context, videoPath, scratchDir string) Result {
	logger := logging.WithContext(ctx, d.logger)

	duration, err := d.probe(ctx, videoPath)
	if err != nil {
		return d.failed(logger, fmt.Errorf("probe duration: %w", err))
	}
	workDir, err := os.MkdirTemp(scratchDir, "frames-*")
	if err != nil {
		return d.failed(logger, fmt.Errorf("create frame dir: %w", err))
	}
	defer os.RemoveAll(workDir)

	count := SampleCount(duration, d.interval)
	result := Result{Sampled: count}
	for i := range count {
		if ctx.Err() != nil {
			return d.failed(logger, ctx.Err())
		}
		text, err := d.readFrame(ctx, videoPath, workDir, i)
		if err != nil {
			logging.WarnWithContext(logger, "frame skipped", "frame_skipped",
				logging.Int("frame", i),
				logging.Error(err),
				logging.String(logging.FieldImpact, "text in this frame is not subtitled"),
			)
			continue
		}
		if text != "" {
			result.Frames = append(result.Frames, Frame{Index: i, Text: text})
		}
	}

	result.Status = StatusNoText
	if len(result.Frames) > 0 {
		result.Status = StatusDetected
	}
	logger.Info("text detection completed",
		logging.String(logging.FieldEventType, "detection_complete"),
		logging.Int("sampled", count),
		logging.Int("frames_with_text", len(result.Frames)),
	)
	return result
}

func (d *Detector) readFrame(ctx context.Context, videoPath, workDir string, index int) (string, error) {
	raw := filepath.Join(workDir, fmt.Sprintf("frame_%05d.png", index))
	prepared := filepath.Join(workDir, fmt.Sprintf("frame_%05d_ocr.png", index))
	defer os.Remove(raw)
	defer os.Remove(prepared)

	if err := d.frames.ExtractFrame(ctx, videoPath, time.Duration(index)*d.interval, raw); err != nil {
		return "", err
	}
	if err := Preprocess(raw, prepared); err != nil {
		return "", err
	}
	text, err := d.ocr.Recognize(ctx, prepared)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (d *Detector) failed(logger *slog.Logger, err error) Result {
	if err == nil {
		err = errors.New("text detection failed")
	}
	logging.WarnWithContext(logger, "text detection failed", "detection_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check ffprobe/tesseract installation (dubber status)"),
		logging.String(logging.FieldImpact, "final video has no burned subtitles"),
	)
	return Result{Status: StatusFailed, Err: err}
}

// HealthCheck reports whether OCR can run. Without it the dub completes
// without burned subtitles.
func (d *Detector) HealthCheck(context.Context) stage.Health {
	if checker, ok := d.ocr.(interface{ Available() bool }); ok && !checker.Available() {
		return stage.Degraded("text_detection", "tesseract not found; videos will be dubbed without subtitles")
	}
	return stage.Health{Name: "text_detection", Ready: true, Detail: fmt.Sprintf("sampling every %s", d.interval)}
}
