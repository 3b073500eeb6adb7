package gl21backend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"

	"voxedit/internal/render"
)

const vertexStrideBytes = 6 * 4

// glBuffer wraps one legacy buffer object. There are no vertex array
// objects here; Bind re-establishes the client-state pointers every time.
type glBuffer struct {
	target   uint32
	id       uint32
	isVertex bool
	size     int
	refs     *render.RefCount
}

func (d *Device) CreateVertexBuffer(data []byte) (render.Buffer, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}
	if len(data) == 0 {
		return nil, errors.New("gl21backend: empty vertex data")
	}

	b := &glBuffer{
		target:   gl.ARRAY_BUFFER,
		isVertex: true,
		size:     len(data),
		refs:     render.NewRefCount(),
	}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b, nil
}

func (d *Device) CreateIndexBuffer(data []byte) (render.Buffer, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}
	if len(data) == 0 {
		return nil, errors.New("gl21backend: empty index data")
	}

	b := &glBuffer{
		target: gl.ELEMENT_ARRAY_BUFFER,
		size:   len(data),
		refs:   render.NewRefCount(),
	}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.id)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	return b, nil
}

func (b *glBuffer) Bind() {
	gl.BindBuffer(b.target, b.id)
	if b.isVertex {
		// normals in the stream are skipped by the stride; the unlit
		// flat-color path never reads them
		gl.EnableClientState(gl.VERTEX_ARRAY)
		gl.VertexPointer(3, gl.FLOAT, vertexStrideBytes, gl.PtrOffset(0))
	}
}

func (b *glBuffer) Unbind() {
	if b.isVertex {
		gl.DisableClientState(gl.VERTEX_ARRAY)
	}
	gl.BindBuffer(b.target, 0)
}

func (b *glBuffer) UpdateData(data []byte, offset int) error {
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("gl21backend: update [%d,%d) exceeds buffer size %d", offset, offset+len(data), b.size)
	}
	gl.BindBuffer(b.target, b.id)
	if offset == 0 && len(data) == b.size {
		gl.BufferData(b.target, len(data), gl.Ptr(data), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferSubData(b.target, offset, len(data), gl.Ptr(data))
	}
	gl.BindBuffer(b.target, 0)
	return nil
}

func (b *glBuffer) Size() int { return b.size }

func (b *glBuffer) NativeHandle() uintptr { return uintptr(b.id) }

func (b *glBuffer) Retain() { b.refs.Retain() }

func (b *glBuffer) Release() {
	b.refs.Release(func() {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	})
}

// CreateTexture uploads RGBA pixels into a legacy 2D texture.
func (d *Device) CreateTexture(width, height int, pixels []byte) (render.Texture, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gl21backend: invalid texture size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("gl21backend: pixel data %d bytes, want %d", len(pixels), width*height*4)
	}

	t := &glTexture{width: width, height: height, refs: render.NewRefCount()}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

type glTexture struct {
	id     uint32
	width  int
	height int
	refs   *render.RefCount
}

func (t *glTexture) Bind(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, t.id)
}

func (t *glTexture) Unbind() {
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (t *glTexture) UpdateData(pixels []byte) error {
	if len(pixels) != t.width*t.height*4 {
		return fmt.Errorf("gl21backend: pixel data %d bytes, want %d", len(pixels), t.width*t.height*4)
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
