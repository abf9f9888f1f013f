// Package transcription converts a video's English speech to text.
//
// Transcribe never fails outright. When WhisperX is not installed or errors,
// the fixed PlaceholderTranscript is returned with StatusPlaceholder so the
// rest of the pipeline can still run and callers can tell the two apart.
package transcription
