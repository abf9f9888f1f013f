// Package language normalizes language codes across the pipeline: the
// transcription language passed to WhisperX, the voice language matched against
// ElevenLabs verified languages, and the tesseract traineddata name.
package language
