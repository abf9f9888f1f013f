package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Missing API credentials are
// not errors: the affected stage fails at run time and `dubber status`
// reports the gap.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateLipSync(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateElevenLabs(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.SessionsDir == "" {
		return errors.New("paths.sessions_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	for key, value := range map[string]string{
		"tools.ffmpeg":    c.Tools.FFmpeg,
		"tools.ffprobe":   c.Tools.FFprobe,
		"tools.tesseract": c.Tools.Tesseract,
		"tools.uvx":       c.Tools.UVX,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateLipSync() error {
	switch c.LipSync.Mode {
	case LipSyncModeAudioReplace, LipSyncModeExternal:
	default:
		return fmt.Errorf("lipsync.mode must be %q or %q, got %q", LipSyncModeAudioReplace, LipSyncModeExternal, c.LipSync.Mode)
	}
	if c.LipSync.Mode == LipSyncModeExternal && strings.TrimSpace(c.LipSync.Command) == "" {
		return errors.New("lipsync.command must be set when lipsync.mode is external")
	}
	return nil
}

func (c *Config) validateDetection() error {
	if c.Detection.IntervalSeconds <= 0 {
		return errors.New("detection.interval_seconds must be positive")
	}
	if c.Detection.TimeoutSeconds <= 0 {
		return errors.New("detection.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateElevenLabs() error {
	if !strings.HasPrefix(c.ElevenLabs.BaseURL, "http://") && !strings.HasPrefix(c.ElevenLabs.BaseURL, "https://") {
		return fmt.Errorf("elevenlabs.base_url must be an http(s) URL, got %q", c.ElevenLabs.BaseURL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
