package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"voxedit/internal/render"
)

// glTexture wraps one GL 2D texture object storing RGBA8 pixels.
type glTexture struct {
	id     uint32
	width  int
	height int
	refs   *render.RefCount
}

// CreateTexture uploads tightly packed RGBA pixels into a new 2D texture.
func (d *Device) CreateTexture(width, height int, pixels []byte) (render.Texture, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("glbackend: invalid texture size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("glbackend: pixel data %d bytes, want %d", len(pixels), width*height*4)
	}

	t := &glTexture{
		width:  width,
		height: height,
		refs:   render.NewRefCount(),
	}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

func (t *glTexture) Bind(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, t.id)
}

func (t *glTexture) Unbind() {
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// UpdateData replaces the full pixel contents; dimensions are fixed at
// creation.
func (t *glTexture) UpdateData(pixels []byte) error {
	if len(pixels) != t.width*t.height*4 {
		return fmt.Errorf("glbackend: pixel data %d bytes, want %d", len(pixels), t.width*t.height*4)
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(t.width), int32(t.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

func (t *glTexture) Width() int  { return t.width }
func (t *glTexture) Height() int { return t.height }

func (t *glTexture) NativeHandle() uintptr { return uintptr(t.id) }

func (t *glTexture) Retain() { t.refs.Retain() }

func (t *glTexture) Release() {
	t.refs.Release(func() {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	})
}
