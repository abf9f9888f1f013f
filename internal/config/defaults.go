package config

const (
	defaultConfigPath  = "~/.config/dubber/config.toml"
	dotEnvFile         = ".env"
	defaultSessionsDir = "~/.local/share/dubber/sessions"
	defaultStateDir    = "~/.local/share/dubber"
	defaultLogDir      = "~/.local/share/dubber/logs"

	defaultFFmpeg    = "ffmpeg"
	defaultFFprobe   = "ffprobe"
	defaultTesseract = "tesseract"
	defaultUVX       = "uvx"

	defaultTranscriptionModel    = "base"
	defaultTranscriptionLanguage = "en"

	defaultGeminiModel    = "gemini-1.5-flash"
	defaultTargetLanguage = "fr"

	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	defaultElevenLabsModelID = "eleven_multilingual_v2"
	defaultElevenLabsFormat  = "mp3_22050_32"
	defaultElevenLabsTimeout = 60

	defaultLipSyncMode    = LipSyncModeAudioReplace
	defaultLipSyncCommand = "python3"
	defaultLipSyncScript  = "Wav2Lip/simple_inference.py"

	defaultDetectionInterval = 1.0
	defaultDetectionTimeout  = 3
	defaultDetectionLanguage = "en"

	defaultExportPrefix = "dubber"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Lip-sync variants selectable through lipsync.mode.
const (
	LipSyncModeAudioReplace = "audio_replace"
	LipSyncModeExternal     = "external"
)

// Credential environment variables consulted when the config leaves keys blank.
const (
	EnvGoogleAPIKey     = "GOOGLE_API_KEY"
	EnvElevenLabsAPIKey = "ELEVENLABS_API_KEY"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SessionsDir: defaultSessionsDir,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:    defaultFFmpeg,
			FFprobe:   defaultFFprobe,
			Tesseract: defaultTesseract,
			UVX:       defaultUVX,
		},
		Transcription: Transcription{
			Model:    defaultTranscriptionModel,
			Language: defaultTranscriptionLanguage,
		},
		Gemini: Gemini{
			Model:          defaultGeminiModel,
			TargetLanguage: defaultTargetLanguage,
		},
		ElevenLabs: ElevenLabs{
			BaseURL:        defaultElevenLabsBaseURL,
			ModelID:        defaultElevenLabsModelID,
			OutputFormat:   defaultElevenLabsFormat,
			VoiceLanguage:  defaultTargetLanguage,
			TimeoutSeconds: defaultElevenLabsTimeout,
		},
		LipSync: LipSync{
			Mode:    defaultLipSyncMode,
			Command: defaultLipSyncCommand,
			Script:  defaultLipSyncScript,
		},
		Detection: Detection{
			IntervalSeconds: defaultDetectionInterval,
			TimeoutSeconds:  defaultDetectionTimeout,
			Language:        defaultDetectionLanguage,
		},
		Export: Export{
			S3Prefix: defaultExportPrefix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
