package subtitles

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dubber/internal/services"
	"dubber/internal/textdetect"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.999, "00:00:01,000"},
		{61.5, "00:01:01,000"},
		{3723, "01:02:03,000"},
		{-4, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestItemsFromFrames(t *testing.T) {
	frames := []textdetect.Frame{{Index: 0, Text: "EXIT"}, {Index: 3, Text: "OPEN"}}
	got := ItemsFromFrames(frames, 1500*time.Millisecond)
	want := []Item{{Start: 0, End: 1.5, Text: "EXIT"}, {Start: 4.5, End: 6, Text: "OPEN"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestItemValidUsesWrittenSeconds(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want bool
	}{
		{"whole second", Item{Start: 0, End: 1, Text: "EXIT"}, true},
		{"crosses boundary", Item{Start: 0.5, End: 1, Text: "EXIT"}, true},
		{"inside first second", Item{Start: 0, End: 0.5, Text: "EXIT"}, false},
		{"inside later second", Item{Start: 1, End: 1.5, Text: "EXIT"}, false},
		{"reversed", Item{Start: 3, End: 2, Text: "EXIT"}, false},
		{"blank text", Item{Start: 0, End: 2, Text: " "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Valid(); got != tt.want {
				t.Fatalf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateTrackSubSecondIntervalHasNoZeroLengthCues(t *testing.T) {
	frames := []textdetect.Frame{{Index: 0, Text: "EXIT"}, {Index: 1, Text: "OPEN"}, {Index: 2, Text: "PUSH"}}
	path := filepath.Join(t.TempDir(), TrackFileName)
	if _, err := GenerateTrack(ItemsFromFrames(frames, 500*time.Millisecond), path); err != nil {
		t.Fatalf("GenerateTrack: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read track: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nOPEN\n\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("track mismatch (-want +got):\n%s", diff)
	}
	if issues := ValidateTrack(path, 10); len(issues) != 0 {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestGenerateTrackWritesOrderedCues(t *testing.T) {
	path := filepath.Join(t.TempDir(), TrackFileName)
	items := []Item{
		{Start: 0, End: 1, Text: "EXIT"},
		{Start: 2, End: 2, Text: "zero length"},
		{Start: 2.7, End: 3.9, Text: "PUSH\n\nDOOR"},
		{Start: 4, End: 5, Text: "   "},
	}

	got, err := GenerateTrack(items, path)
	if err != nil || got != path {
		t.Fatalf("GenerateTrack = %q, %v", got, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read track: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nEXIT\n\n" +
		"2\n00:00:02,000 --> 00:00:03,000\nPUSH\nDOOR\n\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("track mismatch (-want +got):\n%s", diff)
	}
	if issues := ValidateTrack(path, 10); len(issues) != 0 {
		t.Fatalf("unexpected issues %v", issues)
	}
}

func TestGenerateTrackWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	got, err := GenerateTrack([]Item{{Start: 0, End: 1, Text: "x"}}, filepath.Join(blocker, TrackFileName))
	if got != "" || !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected empty path and tagged error, got %q, %v", got, err)
	}
}

func TestValidateTrackReportsIssues(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		video   float64
		want    string
	}{
		{name: "empty", content: "", want: "empty_subtitle_file"},
		{name: "overrun", content: "1\n00:00:00,000 --> 00:00:30,000\nx\n", video: 10, want: "duration_overrun: last cue ends 20.0s after video"},
		{name: "gap", content: "2\n00:00:00,000 --> 00:00:01,000\nx\n", want: "index_gap: cue 1 numbered 2"},
		{name: "garbage", content: "1\nnot a timestamp\nx\n", want: "parse_error: block 1: missing arrow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".srt")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			issues := ValidateTrack(path, tt.video)
			if len(issues) == 0 || issues[0] != tt.want {
				t.Fatalf("issues = %v, want first %q", issues, tt.want)
			}
		})
	}
}
