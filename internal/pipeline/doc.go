// Package pipeline runs one dubbing session end to end.
//
// Stages run in a fixed order: import the upload, transcribe, translate,
// synthesize speech, lip-sync, detect on-screen text, and optionally write and
// burn subtitles. Each run owns a fresh session directory and records every
// artifact in the catalog in creation order. The first fatal stage failure
// halts the run and marks the session failed or blocked according to the
// error's services marker. Text detection failure degrades to a final video
// without subtitles unless detection.halt_on_failure is set.
package pipeline
