package textdetect

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func bimodal(w, h int, dark, light uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := dark
			if x >= w/2 {
				v = light
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestOtsuSeparatesBimodalImage(t *testing.T) {
	img := bimodal(8, 4, 40, 200)
	threshold := OtsuThreshold(img)
	if threshold < 40 || threshold >= 200 {
		t.Fatalf("threshold %d does not separate 40 and 200", threshold)
	}
	Binarize(img, threshold)
	if img.GrayAt(0, 0).Y != 0 || img.GrayAt(7, 0).Y != 255 {
		t.Fatalf("unexpected binarization: %v %v", img.GrayAt(0, 0), img.GrayAt(7, 0))
	}
}

func TestMedianRemovesSpeckle(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 5, 5))
	img.SetGray(2, 2, color.Gray{Y: 255})

	out := Median3x3(img)
	if out.GrayAt(2, 2).Y != 0 {
		t.Fatalf("expected isolated speckle removed, got %d", out.GrayAt(2, 2).Y)
	}
}

func TestGrayscaleNormalizesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 12))
	for y := 10; y < 12; y++ {
		for x := 10; x < 14; x++ {
			src.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	gray := Grayscale(src)
	if gray.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v", gray.Bounds())
	}
	if gray.GrayAt(3, 1).Y != 255 {
		t.Fatalf("expected white pixel, got %d", gray.GrayAt(3, 1).Y)
	}
}

func TestPreprocessWritesBinaryPNG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "raw.png")
	dst := filepath.Join(dir, "ocr.png")
	writePNG(t, src, bimodal(16, 16, 30, 220))

	if err := Preprocess(src, dst); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	f, err := os.Open(dst)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", img)
	}
	for _, v := range gray.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("expected binary pixels, found %d", v)
		}
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create png: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close png: %v", err)
	}
}
