// Command lipsync is the external lip-sync process invoked by dubber when
// lipsync.mode is "external".
//
// It accepts the inference command line (--face, --audio, --outfile) and
// currently keeps the source frames, remuxing them with the new audio through
// a temporary file that is renamed into place.
package main
