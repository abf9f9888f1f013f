package lipsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"dubber/internal/config"
	"dubber/internal/logging"
	"dubber/internal/media/ffmpeg"
	"dubber/internal/services"
	"dubber/internal/stage"
)

// Method names the variant that produced the synced video.
type Method string

const (
	MethodExternal     Method = "external_model"
	MethodAudioReplace Method = "audio_replace"
)

// Result describes a completed sync.
type Result struct {
	Path           string
	Method         Method
	FallbackReason string
}

// Syncer produces a video whose audio track is audioPath.
type Syncer interface {
	Sync(ctx context.Context, videoPath, audioPath, outputPath string) (Result, error)
}

// CommandRunner executes an external process.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// ErrModelUnavailable is returned when the inference script is not installed.
var ErrModelUnavailable = errors.New("lip-sync model unavailable")

// ExternalModel runs an inference command of the form
// `<command> <script> --face V --audio A --outfile O`.
type ExternalModel struct {
	Command string
	Script  string
	run     CommandRunner
}

// NewExternalModel constructs an ExternalModel. A nil runner uses os/exec.
func NewExternalModel(command, script string, runner CommandRunner) *ExternalModel {
	if strings.TrimSpace(command) == "" {
		command = "python3"
	}
	if runner == nil {
		runner = defaultRunner
	}
	return &ExternalModel{Command: command, Script: script, run: runner}
}

// Args returns the inference argument vector.
func (m *ExternalModel) Args(videoPath, audioPath, outputPath string) []string {
	args := make([]string, 0, 7)
	if m.Script != "" {
		args = append(args, m.Script)
	}
	return append(args, "--face", videoPath, "--audio", audioPath, "--outfile", outputPath)
}

// Sync runs the inference command and requires a non-empty output file.
func (m *ExternalModel) Sync(ctx context.Context, videoPath, audioPath, outputPath string) (Result, error) {
	if m.Script != "" {
		if _, err := os.Stat(m.Script); err != nil {
			return Result{}, fmt.Errorf("%w: script %s: %w", ErrModelUnavailable, m.Script, err)
		}
	}
	if err := m.run(ctx, m.Command, m.Args(videoPath, audioPath, outputPath)...); err != nil {
		return Result{}, fmt.Errorf("inference command: %w", err)
	}
	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return Result{}, fmt.Errorf("inference command left no output at %s", outputPath)
	}
	return Result{Path: outputPath, Method: MethodExternal}, nil
}

// AudioReplaceOnly swaps the audio track without touching the frames.
type AudioReplaceOnly struct {
	tool *ffmpeg.Tool
}

// NewAudioReplaceOnly wraps an ffmpeg tool.
func NewAudioReplaceOnly(tool *ffmpeg.Tool) *AudioReplaceOnly {
	return &AudioReplaceOnly{tool: tool}
}

// Sync muxes audioPath under the video stream of videoPath.
func (a *AudioReplaceOnly) Sync(ctx context.Context, videoPath, audioPath, outputPath string) (Result, error) {
	path, err := a.tool.ReplaceAudio(ctx, videoPath, audioPath, outputPath)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: path, Method: MethodAudioReplace}, nil
}

// Chain tries Primary once and, on any failure, runs Fallback once.
type Chain struct {
	Primary  Syncer
	Fallback Syncer
	logger   *slog.Logger
}

// NewChain constructs a Chain.
func NewChain(primary, fallback Syncer, logger *slog.Logger) *Chain {
	return &Chain{Primary: primary, Fallback: fallback, logger: logging.NewComponentLogger(logger, "lipsync")}
}

// Sync implements Syncer.
func (c *Chain) Sync(ctx context.Context, videoPath, audioPath, outputPath string) (Result, error) {
	result, err := c.Primary.Sync(ctx, videoPath, audioPath, outputPath)
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	reason := err.Error()
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "lip-sync model failed; replacing audio only", "lipsync_fallback",
		logging.String("reason", reason),
		logging.String(logging.FieldErrorHint, "install the inference script or set lipsync.mode = \"audio_replace\""),
		logging.String(logging.FieldImpact, "mouth movement will not match the dubbed audio"),
	)
	_ = os.Remove(outputPath)
	result, err = c.Fallback.Sync(ctx, videoPath, audioPath, outputPath)
	if err != nil {
		return Result{}, err
	}
	result.FallbackReason = reason
	return result, nil
}

// Adapter is the pipeline-facing lip-sync stage. Errors come back tagged.
type Adapter struct {
	syncer Syncer
}

// NewFromConfig selects the variant named by lipsync.mode.
func NewFromConfig(cfg *config.Config, tool *ffmpeg.Tool, logger *slog.Logger) *Adapter {
	replace := NewAudioReplaceOnly(tool)
	if cfg != nil && cfg.LipSync.Mode == config.LipSyncModeExternal {
		model := NewExternalModel(cfg.LipSync.Command, cfg.LipSync.Script, nil)
		return &Adapter{syncer: NewChain(model, replace, logger)}
	}
	return &Adapter{syncer: replace}
}

// New wraps an arbitrary Syncer.
func New(syncer Syncer) *Adapter {
	return &Adapter{syncer: syncer}
}

// Sync runs the configured variant. On failure the path is empty.
func (a *Adapter) Sync(ctx context.Context, videoPath, audioPath, outputPath string) (Result, error) {
	result, err := a.syncer.Sync(ctx, videoPath, audioPath, outputPath)
	if err != nil {
		marker := services.ErrExternalTool
		switch {
		case ffmpeg.IsUnavailable(err):
			marker = services.ErrNotFound
		case errors.Is(err, context.DeadlineExceeded):
			marker = services.ErrTimeout
		}
		return Result{}, services.Wrap(marker, "lipsync", "sync", "", err)
	}
	return result, nil
}

func defaultRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			return fmt.Errorf("%s: %w", name, err)
		}
		if lines := strings.Split(detail, "\n"); len(lines) > 3 {
			detail = strings.Join(lines[len(lines)-3:], " | ")
		}
		return fmt.Errorf("%s: %w: %s", name, err, detail)
	}
	return nil
}

// HealthCheck reports which variant will run.
func (a *Adapter) HealthCheck(context.Context) stage.Health {
	switch s := a.syncer.(type) {
	case *AudioReplaceOnly:
		return stage.Health{Name: "lipsync", Ready: true, Detail: "audio replacement"}
	case *Chain:
		if model, ok := s.Primary.(*ExternalModel); ok && model.Script != "" {
			if _, err := os.Stat(model.Script); err != nil {
				return stage.Degraded("lipsync", fmt.Sprintf("inference script %s missing; audio replacement will be used", model.Script))
			}
		}
		return stage.Health{Name: "lipsync", Ready: true, Detail: "external model with audio replacement fallback"}
	default:
		return stage.Healthy("lipsync")
	}
}
