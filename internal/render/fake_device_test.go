package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// fakeDevice records the calls a Context forwards so lifecycle tests can
// run without a GPU.
type fakeDevice struct {
	initWindow WindowHandle

	swapSurface  WindowHandle
	swapWidth    int
	swapHeight   int
	swapCreates  int
	swapDestroys int
	failSwap     bool

	beginCount int
	endCount   int
	idleCount  int
	shutdowns  int

	drawCalls []DrawCall

	nextHandle uintptr
}

func (f *fakeDevice) Name() string { return "fake" }

func (f *fakeDevice) Init(window WindowHandle) error {
	f.initWindow = window
	return nil
}

func (f *fakeDevice) CreateSwapChain(surface WindowHandle, width, height int) error {
	if f.failSwap {
		return errors.New("fake: swap chain creation refused")
	}
	f.swapSurface = surface
	f.swapWidth = width
	f.swapHeight = height
	f.swapCreates++
	return nil
}

func (f *fakeDevice) DestroySwapChain() {
	f.swapSurface = nil
	f.swapWidth, f.swapHeight = 0, 0
	f.swapDestroys++
}

func (f *fakeDevice) BeginFrame() error { f.beginCount++; return nil }
func (f *fakeDevice) EndFrame() error   { f.endCount++; return nil }

func (f *fakeDevice) Draw(call DrawCall) error {
	f.drawCalls = append(f.drawCalls, call)
	return nil
}

func (f *fakeDevice) WaitIdle() { f.idleCount++ }
func (f *fakeDevice) Shutdown() { f.shutdowns++ }

func (f *fakeDevice) newBuffer(size int) *fakeBuffer {
	f.nextHandle++
	return &fakeBuffer{size: size, handle: f.nextHandle, refs: NewRefCount()}
}

func (f *fakeDevice) CreateVertexBuffer(data []byte) (Buffer, error) {
	if len(data) == 0 {
		return nil, errors.New("fake: empty vertex data")
	}
	return f.newBuffer(len(data)), nil
}

func (f *fakeDevice) CreateIndexBuffer(data []byte) (Buffer, error) {
	if len(data) == 0 {
		return nil, errors.New("fake: empty index data")
	}
	return f.newBuffer(len(data)), nil
}

func (f *fakeDevice) CreateUniformBuffer(size int) (Buffer, error) {
	return f.newBuffer(AlignUniformSize(size, UniformAlignment)), nil
}

func (f *fakeDevice) CreateTexture(width, height int, pixels []byte) (Texture, error) {
	return nil, errors.New("fake: textures unsupported")
}

func (f *fakeDevice) CreateShader(vertexSrc, fragmentSrc string) (Shader, error) {
	f.nextHandle++
	return &fakeShader{handle: f.nextHandle, refs: NewRefCount()}, nil
}

type fakeBuffer struct {
	size     int
	handle   uintptr
	refs     *RefCount
	released bool
	updates  int
}

func (b *fakeBuffer) Bind()   {}
func (b *fakeBuffer) Unbind() {}

func (b *fakeBuffer) UpdateData(data []byte, offset int) error {
	if offset < 0 || offset+len(data) > b.size {
		return errors.New("fake: update out of range")
	}
	b.updates++
	return nil
}

func (b *fakeBuffer) Size() int            { return b.size }
func (b *fakeBuffer) NativeHandle() uintptr { return b.handle }
func (b *fakeBuffer) Retain()              { b.refs.Retain() }

func (b *fakeBuffer) Release() {
	b.refs.Release(func() { b.released = true })
}

type fakeShader struct {
	handle   uintptr
	refs     *RefCount
	released bool
}

func (s *fakeShader) Bind()                 {}
func (s *fakeShader) Unbind()               {}
func (s *fakeShader) NativeHandle() uintptr { return s.handle }
func (s *fakeShader) Retain()               { s.refs.Retain() }

func (s *fakeShader) Release() {
	s.refs.Release(func() { s.released = true })
}

// fakeMesher is a standalone ChunkMesher for cache tests.
type fakeMesher struct {
	dirty   bool
	verts   []float32
	indices []uint32

	regens int
	cleans int
}

func (m *fakeMesher) IsDirty() bool          { return m.dirty }
func (m *fakeMesher) SetClean()              { m.dirty = false; m.cleans++ }
func (m *fakeMesher) RegenerateMesh()        { m.regens++ }
func (m *fakeMesher) MeshVertices() []float32 { return m.verts }
func (m *fakeMesher) MeshIndices() []uint32   { return m.indices }

func quadMesh() ([]float32, []uint32) {
	verts := make([]float32, 4*6)
	for i := range verts {
		verts[i] = float32(i)
	}
	return verts, []uint32{0, 1, 2, 2, 3, 0}
}

var testMVP = mgl32.Ident4()
