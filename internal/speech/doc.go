// Package speech synthesizes the translated text to an MP3 with ElevenLabs.
//
// Voice selection is by verified language, comparing base languages so a
// voice verified for "fr-CA" serves a "fr" request. No matching voice is a
// hard failure tagged ErrNotFound.
package speech
