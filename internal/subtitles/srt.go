package subtitles

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// overrunToleranceSeconds is how far the last cue may end past the video.
const overrunToleranceSeconds = 2.0

// FormatTimestamp renders seconds as HH:MM:SS,000, truncating to whole seconds.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d:%02d,000", total/3600, (total%3600)/60, total%60)
}

func parseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	secs, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+secs) + float64(millis)/1000, nil
}

// Cue is one parsed SRT block.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// ParseSRT reads the cues of an SRT file. Malformed blocks are reported as errors.
func ParseSRT(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if content == "" {
		return nil, nil
	}
	var cues []Cue
	for n, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			return cues, fmt.Errorf("block %d: too few lines", n+1)
		}
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return cues, fmt.Errorf("block %d: invalid index %q", n+1, lines[0])
		}
		parts := strings.Split(lines[1], "-->")
		if len(parts) != 2 {
			return cues, fmt.Errorf("block %d: missing arrow", n+1)
		}
		start, err := parseSRTTimestamp(parts[0])
		if err != nil {
			return cues, fmt.Errorf("block %d: %w", n+1, err)
		}
		end, err := parseSRTTimestamp(parts[1])
		if err != nil {
			return cues, fmt.Errorf("block %d: %w", n+1, err)
		}
		cues = append(cues, Cue{Index: index, Start: start, End: end, Text: strings.Join(lines[2:], "\n")})
	}
	return cues, nil
}

// ValidateTrack checks an SRT file for format issues.
// Returns a list of issues found; empty slice means validation passed.
func ValidateTrack(path string, videoSeconds float64) []string {
	var issues []string

	cues, err := ParseSRT(path)
	if err != nil {
		issues = append(issues, fmt.Sprintf("parse_error: %v", err))
		if len(cues) == 0 {
			return issues
		}
	}
	if len(cues) == 0 {
		issues = append(issues, "empty_subtitle_file")
		return issues
	}

	var last float64
	for i, cue := range cues {
		if cue.Index != i+1 {
			issues = append(issues, fmt.Sprintf("index_gap: cue %d numbered %d", i+1, cue.Index))
		}
		if cue.End <= cue.Start {
			issues = append(issues, fmt.Sprintf("non_positive_duration: cue %d", cue.Index))
		}
		if strings.TrimSpace(cue.Text) == "" {
			issues = append(issues, fmt.Sprintf("empty_text: cue %d", cue.Index))
		}
		last = max(last, cue.End)
	}

	if videoSeconds > 0 && last-videoSeconds > overrunToleranceSeconds {
		issues = append(issues, fmt.Sprintf("duration_overrun: last cue ends %.1fs after video", last-videoSeconds))
	}

	return issues
}
