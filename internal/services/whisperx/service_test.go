package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestBuildArgsCPU(t *testing.T) {
	svc := NewService(Config{Model: "base"})
	args := svc.buildArgs("/tmp/audio.wav", "/tmp/out", "english")

	for _, want := range [][]string{
		{"--index-url", PypiIndexURL},
		{"--model", "base"},
		{"--output_format", "json"},
		{"--language", "en"},
		{"--device", "cpu"},
		{"--compute_type", "float32"},
	} {
		idx := slices.Index(args, want[0])
		if idx < 0 || idx+1 >= len(args) || args[idx+1] != want[1] {
			t.Fatalf("expected %s %s in %v", want[0], want[1], args)
		}
	}
	if slices.Contains(args, "--extra-index-url") {
		t.Fatalf("unexpected CUDA index in CPU args: %v", args)
	}
}

func TestBuildArgsCUDA(t *testing.T) {
	svc := NewService(Config{CUDAEnabled: true})
	args := svc.buildArgs("/tmp/audio.wav", "/tmp/out", "")
	if !slices.Contains(args, CUDAIndexURL) || !slices.Contains(args, CUDADevice) {
		t.Fatalf("expected CUDA args, got %v", args)
	}
	if slices.Contains(args, "--language") {
		t.Fatalf("expected no language flag for empty language: %v", args)
	}
	if idx := slices.Index(args, "--model"); args[idx+1] != DefaultModel {
		t.Fatalf("expected default model, got %v", args)
	}
}

func TestTranscribeFileLoadsSegments(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "audio.wav")

	var gotName string
	svc := NewService(Config{UVXBinary: "/opt/uvx"})
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		out := args[slices.Index(args, "--output_dir")+1]
		payload := `{"segments":[{"text":" Hello there. ","start":0,"end":1.5},{"text":"","start":1.5,"end":2},{"text":"General Kenobi.","start":2,"end":3.25}]}`
		return os.WriteFile(filepath.Join(out, "audio.json"), []byte(payload), 0o644)
	})

	result, err := svc.TranscribeFile(context.Background(), source, filepath.Join(dir, "out"), "en")
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if gotName != "/opt/uvx" {
		t.Fatalf("expected configured uvx binary, got %q", gotName)
	}
	if result.Text != "Hello there. General Kenobi." {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if len(result.Segments) != 3 || result.Segments[2].End != 3.25 {
		t.Fatalf("unexpected segments: %+v", result.Segments)
	}
}

func TestTranscribeFileErrors(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(Config{})

	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })
	if _, err := svc.TranscribeFile(context.Background(), filepath.Join(dir, "a.wav"), dir, "en"); !errors.Is(err, ErrNoTranscript) {
		t.Fatalf("expected ErrNoTranscript, got %v", err)
	}

	svc.WithCommandRunner(func(context.Context, string, ...string) error { return errors.New("exit status 2") })
	if _, err := svc.TranscribeFile(context.Background(), filepath.Join(dir, "a.wav"), dir, "en"); err == nil {
		t.Fatal("expected runner failure to surface")
	}

	if _, err := svc.TranscribeFile(context.Background(), "", dir, "en"); err == nil {
		t.Fatal("expected error for empty source")
	}
}
