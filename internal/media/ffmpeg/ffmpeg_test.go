package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type recorder struct {
	calls [][]string
	fail  error
	write bool
}

func (r *recorder) run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.fail != nil {
		return r.fail
	}
	if r.write && len(args) > 0 {
		return os.WriteFile(args[len(args)-1], []byte("media"), 0o644)
	}
	return nil
}

func TestReplaceAudioCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "synced_video.mp4")
	rec := &recorder{write: true}
	tool := New("ffmpeg", WithCommandRunner(rec.run))

	got, err := tool.ReplaceAudio(context.Background(), "/s/in.mp4", "/s/voice.mp3", out)
	if err != nil {
		t.Fatalf("ReplaceAudio: %v", err)
	}
	if got != out {
		t.Fatalf("path = %q, want %q", got, out)
	}
	want := []string{
		"ffmpeg", "-y", "-i", "/s/in.mp4", "-i", "/s/voice.mp3",
		"-c:v", "copy", "-c:a", "aac", "-map", "0:v:0", "-map", "1:a:0", "-shortest", out,
	}
	if diff := cmp.Diff(want, rec.calls[0]); diff != "" {
		t.Fatalf("argument vector mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceAudioIsDeterministic(t *testing.T) {
	first := ReplaceAudioArgs("v.mp4", "a.mp3", "o.mp4")
	second := ReplaceAudioArgs("v.mp4", "a.mp3", "o.mp4")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("expected identical vectors:\n%s", diff)
	}
}

func TestFailuresReturnEmptyPath(t *testing.T) {
	dir := t.TempDir()

	failing := New("ffmpeg", WithCommandRunner((&recorder{fail: errors.New("exit status 1")}).run))
	if got, err := failing.ReplaceAudio(context.Background(), "v", "a", filepath.Join(dir, "o.mp4")); err == nil || got != "" {
		t.Fatalf("expected empty path and error, got %q, %v", got, err)
	}
	if got, err := failing.BurnSubtitles(context.Background(), "v", "s.srt", filepath.Join(dir, "f.mp4")); err == nil || got != "" {
		t.Fatalf("expected empty path and error, got %q, %v", got, err)
	}

	silent := New("ffmpeg", WithCommandRunner((&recorder{}).run))
	if got, err := silent.ReplaceAudio(context.Background(), "v", "a", filepath.Join(dir, "missing.mp4")); !errors.Is(err, ErrNoOutput) || got != "" {
		t.Fatalf("expected ErrNoOutput, got %q, %v", got, err)
	}
	if err := silent.ExtractFrame(context.Background(), "v", time.Second, filepath.Join(dir, "f.png")); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("expected ErrNoOutput for frame, got %v", err)
	}
}

func TestBurnSubtitlesEscapesTrackPath(t *testing.T) {
	args := BurnSubtitlesArgs("in.mp4", "/tmp/it's:here/subtitles.srt", "out.mp4")
	want := []string{"-y", "-i", "in.mp4", "-vf", `subtitles=/tmp/it\'s\:here/subtitles.srt`, "-c:a", "copy", "out.mp4"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Fatalf("burn args mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFrameArgs(t *testing.T) {
	args := ExtractFrameArgs("in.mp4", 2500*time.Millisecond, "frame.png")
	want := []string{"-y", "-hide_banner", "-loglevel", "error", "-ss", "2.500", "-i", "in.mp4", "-frames:v", "1", "frame.png"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Fatalf("frame args mismatch (-want +got):\n%s", diff)
	}
}

func TestStubBinaryEndToEnd(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\nprintf 'wav' > \"$last\"\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	dest := filepath.Join(dir, "audio.wav")
	if err := New(stub).ExtractAudio(context.Background(), "in.mp4", dest); err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "wav" {
		t.Fatalf("unexpected output %q, %v", data, err)
	}
}

func TestMissingBinaryIsUnavailable(t *testing.T) {
	err := New(filepath.Join(t.TempDir(), "no-ffmpeg")).ExtractAudio(context.Background(), "in.mp4", "out.wav")
	if err == nil || !IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
