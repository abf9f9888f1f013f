package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"dubber/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credentials are left blank unless an option sets them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SessionsDir = filepath.Join(base, "sessions")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithGeminiKey sets the translation credential on the test config.
func WithGeminiKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gemini.APIKey = key
	}
}

// WithElevenLabs points the synthesis client at baseURL with the given key.
func WithElevenLabs(baseURL, key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ElevenLabs.BaseURL = baseURL
		b.cfg.ElevenLabs.APIKey = key
	}
}

// WithStubbedBinaries writes no-op stub executables for the provided names and
// prepends them to PATH. If names is empty, the required media tools are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "tesseract"}
		}
		stubs := make(map[string]string, len(names))
		for _, name := range names {
			stubs[name] = "exit 0\n"
		}
		InstallStubs(b.t, filepath.Join(b.baseDir, "bin"), stubs)
	}
}

// InstallStubs writes each body as a /bin/sh script named by its key into dir
// and prepends dir to PATH for the duration of the test.
func InstallStubs(t testing.TB, dir string, scripts map[string]string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for name, body := range scripts {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SessionsDir)
}
