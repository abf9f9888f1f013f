// Package translation turns the English transcript into the target language
// (French by default) with a single Gemini request: no chunking, no retry.
package translation
