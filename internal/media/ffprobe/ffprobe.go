package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

var (
	// ErrNoDuration is returned when neither the container nor any stream
	// reports a usable duration.
	ErrNoDuration = errors.New("ffprobe: no usable duration")
	// ErrNoVideoStream is returned when a file expected to hold video has none.
	ErrNoVideoStream = errors.New("ffprobe: no video stream")
)

// Probe is the subset of ffprobe's JSON report dubber reads.
type Probe struct {
	Streams []Stream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Stream is one entry of the report's streams array.
type Stream struct {
	Index     int    `json:"index"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

// Run executes ffprobe against path and decodes its JSON report.
func Run(ctx context.Context, binary, path string) (Probe, error) {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Probe{}, errors.New("ffprobe: empty path")
	}

	output, err := exec.CommandContext(ctx, binary, "-v", "error", "-show_format", "-show_streams", "-of", "json", "--", path).Output() //nolint:gosec
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Probe{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Probe{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var probe Probe
	if err := json.Unmarshal(output, &probe); err != nil {
		return Probe{}, fmt.Errorf("ffprobe %s: decode report: %w", path, err)
	}
	return probe, nil
}

// Duration returns the duration of path in seconds.
func Duration(ctx context.Context, binary, path string) (float64, error) {
	probe, err := Run(ctx, binary, path)
	if err != nil {
		return 0, err
	}
	return probe.usableSeconds(path)
}

// VideoDuration is Duration for files that must carry at least one video stream.
func VideoDuration(ctx context.Context, binary, path string) (float64, error) {
	probe, err := Run(ctx, binary, path)
	if err != nil {
		return 0, err
	}
	if !probe.HasVideo() {
		return 0, fmt.Errorf("%w: %s", ErrNoVideoStream, path)
	}
	return probe.usableSeconds(path)
}

// HasVideo reports whether any stream is a video stream.
func (p Probe) HasVideo() bool {
	for _, stream := range p.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return true
		}
	}
	return false
}

// Seconds returns the container duration, or the longest stream duration when
// the container has none. A malformed container value yields NaN.
func (p Probe) Seconds() float64 {
	if strings.TrimSpace(p.Format.Duration) != "" {
		return parseSeconds(p.Format.Duration)
	}
	longest := 0.0
	for _, stream := range p.Streams {
		if d := parseSeconds(stream.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

func (p Probe) usableSeconds(path string) (float64, error) {
	seconds := p.Seconds()
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: %s", ErrNoDuration, path)
	}
	return seconds, nil
}

func parseSeconds(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}
