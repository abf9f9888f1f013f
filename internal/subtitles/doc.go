// Package subtitles turns detected on-screen text into an SRT track and burns
// it into the dubbed video.
//
// Cues are timed from the sampling interval of the frames they came from, with
// whole-second timestamps. ValidateTrack re-reads a written file and reports
// structural problems without failing the run.
package subtitles
