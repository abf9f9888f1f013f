package transcription

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dubber/internal/config"
	"dubber/internal/logging"
	"dubber/internal/services/whisperx"
)

type fakeAudio struct {
	err   error
	dests []string
}

func (f *fakeAudio) ExtractAudio(_ context.Context, _ string, dest string) error {
	f.dests = append(f.dests, dest)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, []byte("wav"), 0o644)
}

type fakeEngine struct {
	available bool
	result    whisperx.TranscribeResult
	err       error
	language  string
}

func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) TranscribeFile(_ context.Context, _ string, outputDir, language string) (whisperx.TranscribeResult, error) {
	f.language = language
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return whisperx.TranscribeResult{}, err
	}
	return f.result, f.err
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch cleanup, found %d entries", len(entries))
	}
}

func TestTranscribeSuccess(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	engine := &fakeEngine{available: true, result: whisperx.TranscribeResult{
		Text: "Hello world. Bye.",
		Segments: []whisperx.Segment{
			{Text: " Hello world. ", Start: 0, End: 1.2},
			{Text: "  ", Start: 1.2, End: 1.4},
			{Text: "Bye.", Start: 1.4, End: 2},
		},
	}}
	tr := New(&cfg, &fakeAudio{}, engine, logging.NewNop(), WithTempRoot(root))

	result := tr.Transcribe(context.Background(), "/videos/in.mp4")
	if result.Status != StatusTranscribed {
		t.Fatalf("status = %s, reason %q", result.Status, result.Reason)
	}
	want := []Segment{{Start: 0, End: 1.2, Text: "Hello world."}, {Start: 1.4, End: 2, Text: "Bye."}}
	if diff := cmp.Diff(want, result.Segments); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
	if engine.language != "en" {
		t.Fatalf("expected english transcription, got %q", engine.language)
	}
	assertEmptyDir(t, root)
}

func TestTranscribeFallsBackToPlaceholder(t *testing.T) {
	tests := []struct {
		name   string
		audio  *fakeAudio
		engine Engine
	}{
		{name: "no engine", audio: &fakeAudio{}, engine: nil},
		{name: "engine missing", audio: &fakeAudio{}, engine: &fakeEngine{available: false}},
		{name: "extract fails", audio: &fakeAudio{err: errors.New("no audio stream")}, engine: &fakeEngine{available: true}},
		{name: "engine fails", audio: &fakeAudio{}, engine: &fakeEngine{available: true, err: errors.New("exit status 1")}},
		{name: "empty transcript", audio: &fakeAudio{}, engine: &fakeEngine{available: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tr := New(nil, tt.audio, tt.engine, nil, WithTempRoot(root))
			result := tr.Transcribe(context.Background(), "/videos/in.mp4")
			if result.Status != StatusPlaceholder {
				t.Fatalf("expected placeholder, got %s", result.Status)
			}
			if result.Text != PlaceholderTranscript {
				t.Fatalf("unexpected text %q", result.Text)
			}
			if result.Segments == nil || len(result.Segments) != 0 {
				t.Fatalf("expected empty non-nil segments, got %#v", result.Segments)
			}
			if result.Reason == "" {
				t.Fatal("expected a reason")
			}
			assertEmptyDir(t, root)
		})
	}
}
