// Package tesseract wraps the tesseract OCR binary for single-image recognition
// constrained to one language with a hard per-call deadline.
package tesseract
