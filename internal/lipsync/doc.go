// Package lipsync replaces a video's audio with the synthesized track.
//
// Two variants exist. ExternalModel shells out to an inference script that
// regenerates mouth movement; AudioReplaceOnly remuxes with ffmpeg and leaves
// frames untouched. Chain tries the first and falls back to the second exactly
// once per call. NewFromConfig picks between plain audio replacement and the
// chain based on lipsync.mode.
package lipsync
