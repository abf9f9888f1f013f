package textdetect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeFrames struct {
	t       *testing.T
	offsets []time.Duration
}

func (f *fakeFrames) ExtractFrame(_ context.Context, _ string, offset time.Duration, dest string) error {
	f.offsets = append(f.offsets, offset)
	writePNG(f.t, dest, bimodal(8, 8, 10, 240))
	return nil
}

type fakeOCR struct {
	byFrame map[string]string
	fail    map[string]error
	seen    []string
}

func (o *fakeOCR) Recognize(_ context.Context, imagePath string) (string, error) {
	o.seen = append(o.seen, imagePath)
	if _, err := os.Stat(imagePath); err != nil {
		return "", err
	}
	key := strings.TrimSuffix(filepath.Base(imagePath), "_ocr.png")
	if err := o.fail[key]; err != nil {
		return "", err
	}
	return o.byFrame[key], nil
}

func fixedDuration(seconds float64) DurationProbe {
	return func(context.Context, string) (float64, error) { return seconds, nil }
}

func TestSampleCount(t *testing.T) {
	tests := []struct {
		duration float64
		interval time.Duration
		want     int
	}{
		{10, time.Second, 10},
		{10.9, time.Second, 10},
		{0.5, time.Second, 0},
		{9, 1500 * time.Millisecond, 6},
		{0, time.Second, 0},
	}
	for _, tt := range tests {
		if got := SampleCount(tt.duration, tt.interval); got != tt.want {
			t.Fatalf("SampleCount(%v, %v) = %d, want %d", tt.duration, tt.interval, got, tt.want)
		}
	}
}

func TestDetectSamplesEveryInterval(t *testing.T) {
	scratch := t.TempDir()
	frames := &fakeFrames{t: t}
	ocr := &fakeOCR{
		byFrame: map[string]string{"frame_00002": " EXIT ", "frame_00007": "OPEN"},
		fail:    map[string]error{"frame_00005": errors.New("timed out")},
	}

	result := New(time.Second, fixedDuration(10), frames, ocr, nil).Detect(context.Background(), "in.mp4", scratch)

	if result.Status != StatusDetected || result.Sampled != 10 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(frames.offsets) != 10 || frames.offsets[9] != 9*time.Second {
		t.Fatalf("unexpected offsets %v", frames.offsets)
	}
	want := []Frame{{Index: 2, Text: "EXIT"}, {Index: 7, Text: "OPEN"}}
	if diff := cmp.Diff(want, result.Frames); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
	for _, frame := range result.Frames {
		if frame.Index < 0 || frame.Index >= result.Sampled {
			t.Fatalf("frame index %d out of range", frame.Index)
		}
	}
	entries, _ := os.ReadDir(scratch)
	if len(entries) != 0 {
		t.Fatalf("expected scratch cleaned, found %d entries", len(entries))
	}
}

func TestDetectNoText(t *testing.T) {
	result := New(time.Second, fixedDuration(3), &fakeFrames{t: t}, &fakeOCR{}, nil).Detect(context.Background(), "in.mp4", t.TempDir())
	if result.Status != StatusNoText || len(result.Frames) != 0 || result.Sampled != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestDetectProbeFailure(t *testing.T) {
	probe := func(context.Context, string) (float64, error) { return 0, errors.New("ffprobe missing") }
	result := New(time.Second, probe, &fakeFrames{t: t}, &fakeOCR{}, nil).Detect(context.Background(), "in.mp4", t.TempDir())
	if result.Status != StatusFailed || result.Err == nil || len(result.Frames) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestFrameOffset(t *testing.T) {
	if got := (Frame{Index: 4}).Offset(1500 * time.Millisecond); got != 6*time.Second {
		t.Fatalf("Offset = %v", got)
	}
}
