package graphics

import (
	"fmt"
	"image"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// RGBAPixels converts any decoded image into tightly packed RGBA bytes,
// the layout the texture factories expect.
func RGBAPixels(img image.Image) ([]byte, int, int) {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(rgba, image.Point{}, img, b, xdraw.Src, nil)
	return rgba.Pix, b.Dx(), b.Dy()
}

// ScaleRGBA resizes an image to width x height and returns packed RGBA
// bytes. Used to fit arbitrary source images to backend size limits.
func ScaleRGBA(img image.Image, width, height int) []byte {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst.Pix
}

// LoadPixels decodes a texture file into packed RGBA bytes plus dimensions.
func LoadPixels(path string) ([]byte, int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("could not open texture file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("could not decode image %s: %w", path, err)
	}

	pix, w, h := RGBAPixels(img)
	return pix, w, h, nil
}
