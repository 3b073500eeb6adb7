package graphics

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func checkerImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{A: 255}
			if (x+y)%2 == 0 {
				c.R, c.G, c.B = 255, 255, 255
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRGBAPixelsPacksTightly(t *testing.T) {
	pix, w, h := RGBAPixels(checkerImage(4, 3))
	if w != 4 || h != 3 {
		t.Fatalf("dimensions = %dx%d, want 4x3", w, h)
	}
	if len(pix) != 4*3*4 {
		t.Fatalf("pixel bytes = %d, want %d", len(pix), 4*3*4)
	}
	// (0,0) is white, (1,0) is black, both opaque
	if pix[0] != 255 || pix[3] != 255 {
		t.Errorf("pixel (0,0) = %v", pix[0:4])
	}
	if pix[4] != 0 || pix[7] != 255 {
		t.Errorf("pixel (1,0) = %v", pix[4:8])
	}
}

func TestScaleRGBAFitsTarget(t *testing.T) {
	pix := ScaleRGBA(checkerImage(64, 64), 16, 8)
	if len(pix) != 16*8*4 {
		t.Errorf("scaled pixel bytes = %d, want %d", len(pix), 16*8*4)
	}
}

func TestLoadPixelsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, checkerImage(8, 8)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	pix, w, h, err := LoadPixels(path)
	if err != nil {
		t.Fatalf("LoadPixels: %v", err)
	}
	if w != 8 || h != 8 || len(pix) != 8*8*4 {
		t.Errorf("got %dx%d, %d bytes", w, h, len(pix))
	}

	if _, _, _, err := LoadPixels(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Errorf("missing file returned nil error")
	}
}
