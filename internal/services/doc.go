// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent session statuses (failed vs blocked).
//
// Subpackages hold the thin clients for external capabilities (WhisperX,
// Gemini, ElevenLabs, tesseract). Stage adapters build on them.
package services
