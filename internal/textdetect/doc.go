// Package textdetect finds on-screen text in a video.
//
// Frames are sampled every interval, cleaned up for OCR (grayscale, Otsu
// binarization, 3x3 median) and read with tesseract. A frame that fails or
// times out is skipped; only a failure that prevents sampling altogether marks
// the result StatusFailed.
package textdetect
