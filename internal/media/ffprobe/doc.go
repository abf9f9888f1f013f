// Package ffprobe runs ffprobe and reads durations from its JSON report.
//
// VideoDuration is what frame-text detection uses to size its sampling grid;
// it rejects files without a video stream so an audio-only upload fails
// detection instead of producing an empty grid.
package ffprobe
