package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"dubber/internal/config"
	"dubber/internal/services"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = data
	return &s3.PutObjectOutput{}, nil
}

func TestPublishUploadsFinalVideo(t *testing.T) {
	local := filepath.Join(t.TempDir(), "final_video.mp4")
	if err := os.WriteFile(local, []byte("mp4-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	putter := &fakePutter{}

	uri, err := New(putter, "bucket", "/dubs/", nil).Publish(context.Background(), "abc", local)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if uri != "s3://bucket/dubs/abc/final_video.mp4" {
		t.Fatalf("uri = %q", uri)
	}
	if aws.ToString(putter.input.ContentType) != "video/mp4" || aws.ToInt64(putter.input.ContentLength) != 9 {
		t.Fatalf("unexpected input %+v", putter.input)
	}
	if string(putter.body) != "mp4-bytes" {
		t.Fatalf("body = %q", putter.body)
	}
}

func TestPublishFailures(t *testing.T) {
	exporter := New(&fakePutter{err: errors.New("access denied")}, "bucket", "", nil)
	if _, err := exporter.Publish(context.Background(), "abc", filepath.Join(t.TempDir(), "missing.mp4")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing file, got %v", err)
	}

	local := filepath.Join(t.TempDir(), "final_video.mp4")
	if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := exporter.Publish(context.Background(), "abc", local); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestNewFromConfigDisabled(t *testing.T) {
	cfg := config.Default()
	exporter, err := NewFromConfig(context.Background(), &cfg, nil)
	if err != nil || exporter != nil {
		t.Fatalf("expected nil exporter without bucket, got %v, %v", exporter, err)
	}
}

func TestHealthCheckNamesTarget(t *testing.T) {
	health := New(&fakePutter{}, "media", "dubs", nil).HealthCheck(context.Background())
	if !health.Ready || health.Detail != "s3://media/dubs" {
		t.Fatalf("unexpected health %+v", health)
	}
}
