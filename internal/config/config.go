package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SessionsDir string `toml:"sessions_dir"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
}

// Tools names the external binaries invoked at the process boundary.
type Tools struct {
	FFmpeg    string `toml:"ffmpeg"`
	FFprobe   string `toml:"ffprobe"`
	Tesseract string `toml:"tesseract"`
	UVX       string `toml:"uvx"`
}

// Transcription contains speech-to-text settings.
type Transcription struct {
	Model       string `toml:"model"`
	Language    string `toml:"language"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
}

// Gemini contains translation model settings.
type Gemini struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TargetLanguage string `toml:"target_language"`
	BaseURL        string `toml:"base_url"`
}

// ElevenLabs contains speech synthesis settings.
type ElevenLabs struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	ModelID        string `toml:"model_id"`
	OutputFormat   string `toml:"output_format"`
	VoiceLanguage  string `toml:"voice_language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LipSync selects the lip-sync variant and the external inference command.
type LipSync struct {
	Mode    string `toml:"mode"`
	Command string `toml:"command"`
	Script  string `toml:"script"`
}

// Detection contains on-frame text detection settings.
type Detection struct {
	IntervalSeconds float64 `toml:"interval_seconds"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	Language        string  `toml:"language"`
	HaltOnFailure   bool    `toml:"halt_on_failure"`
}

// Export configures optional publication of the final video.
type Export struct {
	S3Bucket string `toml:"s3_bucket"`
	S3Prefix string `toml:"s3_prefix"`
	Region   string `toml:"region"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubber.
//
// Configuration sections by subsystem:
//   - Paths: session, state, and log directories
//   - Tools: external binary names (ffmpeg, ffprobe, tesseract, uvx)
//   - Transcription: WhisperX model and source language
//   - Gemini: translation credentials and model
//   - ElevenLabs: speech synthesis credentials, model, and encoding
//   - LipSync: lip-sync variant and external inference command
//   - Detection: frame sampling interval and OCR timeout
//   - Export: optional S3 publication of the final video
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Transcription Transcription `toml:"transcription"`
	Gemini        Gemini        `toml:"gemini"`
	ElevenLabs    ElevenLabs    `toml:"elevenlabs"`
	LipSync       LipSync       `toml:"lipsync"`
	Detection     Detection     `toml:"detection"`
	Export        Export        `toml:"export"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file in the working directory is
// loaded into the process environment first; variables already set win.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(dotEnvFile); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dubber.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories dubber writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.SessionsDir, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogPath returns the sqlite database path for the session catalog.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.StateDir, "sessions.db")
}

// DetectionInterval returns the frame sampling interval.
func (c *Config) DetectionInterval() time.Duration {
	return time.Duration(c.Detection.IntervalSeconds * float64(time.Second))
}

// DetectionTimeout returns the per-frame recognition timeout.
func (c *Config) DetectionTimeout() time.Duration {
	return time.Duration(c.Detection.TimeoutSeconds) * time.Second
}

// ExportEnabled reports whether final videos are published to S3.
func (c *Config) ExportEnabled() bool {
	return strings.TrimSpace(c.Export.S3Bucket) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
