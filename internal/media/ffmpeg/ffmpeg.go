package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoOutput is returned when ffmpeg exits cleanly but leaves no output file.
var ErrNoOutput = errors.New("ffmpeg produced no output")

// CommandRunner executes ffmpeg. Tests substitute it to capture argument vectors.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Tool runs the fixed ffmpeg invocations the pipeline needs.
type Tool struct {
	binary string
	run    CommandRunner
}

// Option configures a Tool.
type Option func(*Tool)

// WithCommandRunner overrides the process runner.
func WithCommandRunner(runner CommandRunner) Option {
	return func(t *Tool) {
		if runner != nil {
			t.run = runner
		}
	}
}

// New constructs a Tool for the given binary, defaulting to "ffmpeg".
func New(binary string, opts ...Option) *Tool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	t := &Tool{binary: binary, run: defaultRunner}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Binary returns the configured ffmpeg command.
func (t *Tool) Binary() string {
	return t.binary
}

// ExtractAudio decodes the first audio stream of videoPath into a mono 16 kHz
// PCM WAV at dest.
func (t *Tool) ExtractAudio(ctx context.Context, videoPath, dest string) error {
	if err := t.run(ctx, t.binary, ExtractAudioArgs(videoPath, dest)...); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return requireOutput(dest)
}

// ReplaceAudio muxes audioPath under the video stream of videoPath. Video is
// stream-copied, audio re-encoded to AAC, and the result truncated to the
// shorter stream.
func (t *Tool) ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) (string, error) {
	if err := t.run(ctx, t.binary, ReplaceAudioArgs(videoPath, audioPath, outputPath)...); err != nil {
		return "", fmt.Errorf("replace audio: %w", err)
	}
	if err := requireOutput(outputPath); err != nil {
		return "", fmt.Errorf("replace audio: %w", err)
	}
	return outputPath, nil
}

// ExtractFrame grabs the single frame at offset as a PNG.
func (t *Tool) ExtractFrame(ctx context.Context, videoPath string, offset time.Duration, dest string) error {
	if err := t.run(ctx, t.binary, ExtractFrameArgs(videoPath, offset, dest)...); err != nil {
		return fmt.Errorf("extract frame at %s: %w", offset, err)
	}
	return requireOutput(dest)
}

// BurnSubtitles re-encodes videoPath with trackPath composited and copies audio.
func (t *Tool) BurnSubtitles(ctx context.Context, videoPath, trackPath, outputPath string) (string, error) {
	if err := t.run(ctx, t.binary, BurnSubtitlesArgs(videoPath, trackPath, outputPath)...); err != nil {
		return "", fmt.Errorf("burn subtitles: %w", err)
	}
	if err := requireOutput(outputPath); err != nil {
		return "", fmt.Errorf("burn subtitles: %w", err)
	}
	return outputPath, nil
}

// ExtractAudioArgs builds the audio extraction argument vector.
func ExtractAudioArgs(videoPath, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-map", "0:a:0",
		"-vn", "-sn", "-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// ReplaceAudioArgs builds the audio replacement argument vector.
func ReplaceAudioArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	}
}

// ExtractFrameArgs builds the single-frame PNG extraction argument vector.
func ExtractFrameArgs(videoPath string, offset time.Duration, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(offset),
		"-i", videoPath,
		"-frames:v", "1",
		dest,
	}
}

// BurnSubtitlesArgs builds the subtitle burn argument vector.
func BurnSubtitlesArgs(videoPath, trackPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-vf", "subtitles=" + escapeFilterPath(trackPath),
		"-c:a", "copy",
		outputPath,
	}
}

// escapeFilterPath quotes characters the filtergraph parser treats specially.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`, `,`, `\,`)
	return replacer.Replace(path)
}

func formatSeconds(offset time.Duration) string {
	return strconv.FormatFloat(offset.Seconds(), 'f', 3, 64)
}

func requireOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoOutput, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrNoOutput, path)
	}
	return nil
}

func defaultRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			return fmt.Errorf("%s: %w", name, err)
		}
		return fmt.Errorf("%s: %w: %s", name, err, lastLines(detail, 5))
	}
	return nil
}

func lastLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// IsUnavailable reports whether err means the binary could not be started.
func IsUnavailable(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission)
}
