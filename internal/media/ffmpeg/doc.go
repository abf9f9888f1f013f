// Package ffmpeg wraps the fixed ffmpeg invocations of the dubbing pipeline:
// audio extraction for transcription, audio replacement for lip-sync, single
// frame grabs for text detection, and subtitle burn-in.
//
// Every call verifies that ffmpeg left a non-empty output file; a clean exit
// without output is ErrNoOutput. The argument builders are exported so callers
// and tests can assert the exact command.
package ffmpeg
