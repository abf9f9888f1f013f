// Package gemini wraps google.golang.org/genai for single-prompt text generation.
package gemini
