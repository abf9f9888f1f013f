package textdetect

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"slices"

	"golang.org/x/image/draw"
)

// Preprocess reads the PNG at src, converts it to grayscale, binarizes it with
// Otsu's threshold, applies a 3x3 median filter, and writes the result to dst.
func Preprocess(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open frame: %w", err)
	}
	img, err := png.Decode(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}

	gray := Grayscale(img)
	Binarize(gray, OtsuThreshold(gray))
	cleaned := Median3x3(gray)

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create preprocessed frame: %w", err)
	}
	if err := png.Encode(out, cleaned); err != nil {
		out.Close()
		return fmt.Errorf("encode preprocessed frame: %w", err)
	}
	return out.Close()
}

// Grayscale converts img to an 8-bit grayscale image with origin (0,0).
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}

// OtsuThreshold returns the intensity that maximizes between-class variance.
func OtsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	for _, v := range gray.Pix {
		hist[v]++
	}
	total := len(gray.Pix)
	if total == 0 {
		return 127
	}

	var sum float64
	for i, count := range hist {
		sum += float64(i * count)
	}

	var sumB, best float64
	var weightB int
	threshold := 0
	for t := range 256 {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}

// Binarize maps pixels above threshold to white and the rest to black in place.
func Binarize(gray *image.Gray, threshold uint8) {
	for i, v := range gray.Pix {
		if v > threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
}

// Median3x3 returns a copy of gray with each pixel replaced by the median of
// its 3x3 neighbourhood. Edge pixels use the clamped neighbourhood.
func Median3x3(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	out := image.NewGray(bounds)
	window := make([]uint8, 0, 9)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			window = window[:0]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px := clamp(x+dx, bounds.Min.X, bounds.Max.X-1)
					py := clamp(y+dy, bounds.Min.Y, bounds.Max.Y-1)
					window = append(window, gray.GrayAt(px, py).Y)
				}
			}
			slices.Sort(window)
			out.Pix[out.PixOffset(x, y)] = window[4]
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
