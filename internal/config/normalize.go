package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeTranscription()
	c.normalizeGemini()
	c.normalizeElevenLabs()
	if err := c.normalizeLipSync(); err != nil {
		return err
	}
	c.normalizeDetection()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SessionsDir) == "" {
		c.Paths.SessionsDir = defaultSessionsDir
	}
	if c.Paths.SessionsDir, err = expandPath(c.Paths.SessionsDir); err != nil {
		return fmt.Errorf("paths.sessions_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = defaultString(c.Tools.FFmpeg, defaultFFmpeg)
	c.Tools.FFprobe = defaultString(c.Tools.FFprobe, defaultFFprobe)
	c.Tools.Tesseract = defaultString(c.Tools.Tesseract, defaultTesseract)
	c.Tools.UVX = defaultString(c.Tools.UVX, defaultUVX)
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = defaultString(c.Transcription.Model, defaultTranscriptionModel)
	c.Transcription.Language = strings.ToLower(defaultString(c.Transcription.Language, defaultTranscriptionLanguage))
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv(EnvGoogleAPIKey); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.Model = defaultString(c.Gemini.Model, defaultGeminiModel)
	c.Gemini.TargetLanguage = strings.ToLower(defaultString(c.Gemini.TargetLanguage, defaultTargetLanguage))
	c.Gemini.BaseURL = strings.TrimSpace(c.Gemini.BaseURL)
}

func (c *Config) normalizeElevenLabs() {
	c.ElevenLabs.APIKey = strings.TrimSpace(c.ElevenLabs.APIKey)
	if c.ElevenLabs.APIKey == "" {
		if value, ok := os.LookupEnv(EnvElevenLabsAPIKey); ok {
			c.ElevenLabs.APIKey = strings.TrimSpace(value)
		}
	}
	c.ElevenLabs.BaseURL = strings.TrimRight(defaultString(c.ElevenLabs.BaseURL, defaultElevenLabsBaseURL), "/")
	c.ElevenLabs.ModelID = defaultString(c.ElevenLabs.ModelID, defaultElevenLabsModelID)
	c.ElevenLabs.OutputFormat = defaultString(c.ElevenLabs.OutputFormat, defaultElevenLabsFormat)
	c.ElevenLabs.VoiceLanguage = strings.ToLower(defaultString(c.ElevenLabs.VoiceLanguage, c.Gemini.TargetLanguage))
	if c.ElevenLabs.TimeoutSeconds <= 0 {
		c.ElevenLabs.TimeoutSeconds = defaultElevenLabsTimeout
	}
}

func (c *Config) normalizeLipSync() error {
	c.LipSync.Mode = strings.ToLower(defaultString(c.LipSync.Mode, defaultLipSyncMode))
	c.LipSync.Command = defaultString(c.LipSync.Command, defaultLipSyncCommand)
	// An empty script means the command itself speaks the --face/--audio/--outfile flags.
	c.LipSync.Script = strings.TrimSpace(c.LipSync.Script)
	if c.LipSync.Script == "" {
		return nil
	}
	var err error
	if c.LipSync.Script, err = expandPath(c.LipSync.Script); err != nil {
		return fmt.Errorf("lipsync.script: %w", err)
	}
	return nil
}

func (c *Config) normalizeDetection() {
	c.Detection.Language = strings.ToLower(defaultString(c.Detection.Language, defaultDetectionLanguage))
}

func (c *Config) normalizeExport() {
	c.Export.S3Bucket = strings.TrimSpace(c.Export.S3Bucket)
	c.Export.S3Prefix = strings.Trim(strings.TrimSpace(c.Export.S3Prefix), "/")
	c.Export.Region = strings.TrimSpace(c.Export.Region)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
