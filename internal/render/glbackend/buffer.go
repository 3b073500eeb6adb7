package glbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"voxedit/internal/render"
)

// vertexStrideBytes is the byte stride of the interleaved pos+normal layout.
const vertexStrideBytes = 6 * 4

// glBuffer wraps one GL buffer object. Vertex buffers also own the VAO that
// records their attribute layout so a draw only has to bind.
type glBuffer struct {
	target uint32
	id     uint32
	vao    uint32
	size   int
	refs   *render.RefCount
}

// CreateVertexBuffer uploads interleaved position+normal vertex data and
// records the attribute layout in a dedicated VAO.
func (d *Device) CreateVertexBuffer(data []byte) (render.Buffer, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}
	if len(data) == 0 {
		return nil, errors.New("glbackend: empty vertex data")
	}

	b := &glBuffer{
		target: gl.ARRAY_BUFFER,
		size:   len(data),
		refs:   render.NewRefCount(),
	}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStrideBytes, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStrideBytes, 3*4)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b, nil
}

// CreateIndexBuffer uploads a uint32 index stream.
func (d *Device) CreateIndexBuffer(data []byte) (render.Buffer, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}
	if len(data) == 0 {
		return nil, errors.New("glbackend: empty index data")
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

// CreateUniformBuffer allocates a constant buffer rounded up to the
// driver's uniform offset alignment; the buffer reports the allocated size.
func (d *Device) CreateUniformBuffer(size int) (render.Buffer, error) {
	if !d.initialized {
		return nil, render.ErrNotInitialized
	}
	alloc := render.AlignUniformSize(size, d.uniformAlign)

	b := &glBuffer{
		target: gl.UNIFORM_BUFFER,
		size:   alloc,
		refs:   render.NewRefCount(),
	}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.id)
	gl.BufferData(gl.UNIFORM_BUFFER, alloc, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return b, nil
}

func (b *glBuffer) Bind() {
	if b.vao != 0 {
		gl.BindVertexArray(b.vao)
		return
	}
	gl.BindBuffer(b.target, b.id)
}

func (b *glBuffer) Unbind() {
	if b.vao != 0 {
		gl.BindVertexArray(0)
		return
	}
	gl.BindBuffer(b.target, 0)
}

// UpdateData replaces the whole store when offset 0 and len(data) covers
// it, and writes a sub-range otherwise.
func (b *glBuffer) UpdateData(data []byte, offset int) error {
	if offset < 0 || offset+len(data) > b.size {
		return fmt.Errorf("glbackend: update [%d,%d) exceeds buffer size %d", offset, offset+len(data), b.size)
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
		if b.vao != 0 {
			gl.DeleteVertexArrays(1, &b.vao)
			b.vao = 0
		}
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	})
}
