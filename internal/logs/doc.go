// Package logs reads the run log written under the configured log directory.
//
// Last returns the trailing lines of the log, optionally narrowed to a single
// session, together with the byte offset reached. Follow continues from that
// offset and emits new lines until its context is cancelled, which is what
// `dubber logs --follow` uses while a dub is running in another terminal.
package logs
