// Package elevenlabs is a minimal HTTP client for the ElevenLabs voices listing
// and text-to-speech endpoints.
package elevenlabs
