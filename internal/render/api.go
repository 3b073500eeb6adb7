package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// Common render errors shared by all backends.
var (
	// ErrBackendNotAvailable is returned when a requested backend cannot run
	// on this machine (missing driver, stub backend).
	ErrBackendNotAvailable = errors.New("render: backend not available")

	// ErrNotInitialized is returned when a device operation is called before Init.
	ErrNotInitialized = errors.New("render: device not initialized")

	// ErrNoSwapChain is returned when a frame operation is attempted without a
	// presentable surface.
	ErrNoSwapChain = errors.New("render: no swap chain")

	// ErrNilHandle is returned when a nil window/surface handle is supplied.
	ErrNilHandle = errors.New("render: nil window handle")

	// ErrNoViewport is returned when a swap chain is requested before a
	// viewport surface has been designated.
	ErrNoViewport = errors.New("render: no viewport surface set")
)

// WindowHandle is an opaque native window or surface handle produced by the
// platform windowing layer. Each backend asserts it to the concrete type it
// expects (the GL and Vulkan backends want a *glfw.Window).
type WindowHandle any

// DrawCall describes one indexed draw submission between BeginFrame and
// EndFrame. Vertex layout is interleaved position+normal float32 (stride 6).
type DrawCall struct {
	Shader     Shader
	Vertex     Buffer
	Index      Buffer
	IndexCount int
	MVP        mgl32.Mat4
}

// Device is the backend capability set: device/context lifetime, the swap
// chain bound to the designated viewport surface, frame submission, and the
// resource factories. One implementation exists per graphics API; the
// implementation is chosen once at startup so the per-draw path stays on a
// single concrete value.
//
// Devices do not police call ordering — Context owns the lifecycle state
// machine and only forwards calls that are legal in its current state.
type Device interface {
	// Name returns the backend identifier (e.g. "opengl", "vulkan").
	Name() string

	// Init creates the device/context only. It must not create a swap chain
	// or any render-target view; presentation is bound later through
	// CreateSwapChain with an explicit viewport surface.
	Init(window WindowHandle) error

	// CreateSwapChain binds presentation to the given viewport surface at the
	// given size and clears the fresh render target to a neutral color so no
	// stale contents are ever presented. Any previous swap chain must have
	// been destroyed first.
	CreateSwapChain(surface WindowHandle, width, height int) error

	// DestroySwapChain flushes pending GPU work and releases the swap chain
	// and its dependent views in dependency order. No-op when none exists.
	DestroySwapChain()

	// BeginFrame binds the render target and clears it. On the fence-based
	// backend it first rotates to the next frame slot, blocking until the
	// GPU has signaled that slot's previously assigned fence value, then
	// transitions the target surface to render-target state.
	BeginFrame() error

	// EndFrame submits the recorded work and presents. On the fence-based
	// backend the target surface is transitioned back to presentable state
	// before submission.
	EndFrame() error

	// Draw issues one indexed draw. Only valid between BeginFrame and EndFrame.
	Draw(call DrawCall) error

	// WaitIdle blocks until the GPU has drained all submitted work. Safe to
	// call at any time, including during resize and shutdown.
	WaitIdle()

	// Shutdown waits for GPU idle and releases remaining device resources in
	// reverse dependency order. The device is unusable afterwards.
	Shutdown()

	CreateVertexBuffer(data []byte) (Buffer, error)
	CreateIndexBuffer(data []byte) (Buffer, error)

	// CreateUniformBuffer allocates a constant buffer of at least size bytes.
	// Backends round the allocation up to their required alignment; the
	// returned buffer reports the allocated size, not the requested one.
	CreateUniformBuffer(size int) (Buffer, error)

	CreateTexture(width, height int, pixels []byte) (Texture, error)

	// CreateShader compiles and links a shader from vertex-stage and
	// fragment-stage source in the backend's native shading language.
	// Compiler diagnostics are returned verbatim in the error.
	CreateShader(vertexSrc, fragmentSrc string) (Shader, error)
}

// Buffer is a GPU-resident vertex, index or uniform buffer. The wrapper owns
// exactly one native object and releases it when the last reference drops.
type Buffer interface {
	Bind()
	Unbind()

	// UpdateData replaces the whole resource when offset is 0 and len(data)
	// covers it, and performs a partial write otherwise. Callers must not
	// update a buffer bound by a draw that has not completed on the
	// fence-based backend.
	UpdateData(data []byte, offset int) error

	// Size reports the allocated byte size, which may exceed the requested
	// size on backends with alignment requirements.
	Size() int

	NativeHandle() uintptr
	Retain()
	Release()
}

// Texture is a GPU-resident 2D image.
type Texture interface {
	Bind(unit int)
	Unbind()
	UpdateData(pixels []byte) error
	Width() int
	Height() int
	NativeHandle() uintptr
	Retain()
	Release()
}

// Shader is a linked shader program (or module pair, on explicit backends).
type Shader interface {
	Bind()
	Unbind()
	NativeHandle() uintptr
	Retain()
	Release()
}
