// Package whisperx runs WhisperX through uvx and parses its JSON transcript.
//
// The service only transcribes an already-extracted WAV; audio extraction
// belongs to internal/media/ffmpeg. Model size and CUDA are passed via Config.
package whisperx
