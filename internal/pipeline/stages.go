package pipeline

import (
	"context"
	"time"

	"dubber/internal/lipsync"
	"dubber/internal/subtitles"
	"dubber/internal/textdetect"
	"dubber/internal/transcription"
)

// Stage names recorded on sessions and log lines.
const (
	StageUpload        = "upload"
	StageTranscription = "transcription"
	StageTranslation   = "translation"
	StageSynthesis     = "synthesis"
	StageLipSync       = "lipsync"
	StageDetection     = "detection"
	StageSubtitles     = "subtitles"
	StageBurn          = "burn"
	StageExport        = "export"
	StageComplete      = "complete"
)

// Artifact file names inside a session directory.
const (
	SyncedFileName   = "synced_video.mp4"
	TrackFileName    = subtitles.TrackFileName
	FinalFileName    = subtitles.FinalFileName
	DownloadFileName = "dubbed_french.mp4"
)

// Transcriber turns a video's speech into text. It never fails; unavailable
// speech-to-text yields a placeholder result.
type Transcriber interface {
	Transcribe(ctx context.Context, videoPath string) transcription.Result
}

// Translator renders text in the target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Synthesizer voices text into an audio file under outputDir.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputDir string) (string, error)
}

// LipSyncer replaces a video's audio track.
type LipSyncer interface {
	Sync(ctx context.Context, videoPath, audioPath, outputPath string) (lipsync.Result, error)
}

// TextDetector finds on-screen text by sampling frames.
type TextDetector interface {
	Detect(ctx context.Context, videoPath, scratchDir string) textdetect.Result
	Interval() time.Duration
}

// SubtitleBurner composites a subtitle track into a video.
type SubtitleBurner interface {
	Burn(ctx context.Context, videoPath, trackPath, outputPath string) (string, error)
}

// Exporter publishes the final video. Optional.
type Exporter interface {
	Publish(ctx context.Context, sessionID, localPath string) (string, error)
}

// Stages bundles the adapters a Pipeline drives.
type Stages struct {
	Transcriber Transcriber
	Translator  Translator
	Synthesizer Synthesizer
	LipSyncer   LipSyncer
	Detector    TextDetector
	Burner      SubtitleBurner
	Exporter    Exporter
}
