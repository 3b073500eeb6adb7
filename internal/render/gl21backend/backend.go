// Package gl21backend is a minimal legacy fallback implementing the
// render.Device contract on OpenGL 2.1 fixed-function: buffer objects with
// client-state pointers, matrix stack instead of shader uniforms. It exists
// for machines whose drivers never got a core profile.
package gl21backend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxedit/internal/config"
	"voxedit/internal/render"
)

func init() {
	render.Register(render.BackendOpenGL21, func() render.Device {
		return &Device{}
	})
}

var (
	errFrameNotOpen  = errors.New("gl21backend: draw outside BeginFrame/EndFrame")
	errNoShaders     = errors.New("gl21backend: shaders not supported on the fixed-function pipeline")
	errNoUniformBufs = errors.New("gl21backend: uniform buffers not supported before OpenGL 3.1")
)

// Device drives one legacy OpenGL 2.1 context.
type Device struct {
	window  *glfw.Window
	surface *glfw.Window

	width   int
	height  int
	inFrame bool

	initialized  bool
	hasSwapChain bool
}

func (d *Device) Name() string { return render.BackendOpenGL21 }

func (d *Device) Init(window render.WindowHandle) error {
	win, ok := window.(*glfw.Window)
	if !ok || win == nil {
		return render.ErrNilHandle
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl21backend: gl init: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	d.window = win
	d.initialized = true
	return nil
}

func (d *Device) CreateSwapChain(surface render.WindowHandle, width, height int) error {
	if !d.initialized {
		return render.ErrNotInitialized
	}
	sfc, ok := surface.(*glfw.Window)
	if !ok || sfc == nil {
		return render.ErrNilHandle
	}

	sfc.MakeContextCurrent()
	gl.Viewport(0, 0, int32(width), int32(height))
	r, g, b := config.GetClearColor()
	gl.ClearColor(r, g, b, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	sfc.SwapBuffers()
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	d.surface = sfc
	d.width = width
	d.height = height
	d.hasSwapChain = true
	return nil
}

func (d *Device) DestroySwapChain() {
	if !d.hasSwapChain {
		return
	}
	gl.Finish()
	d.surface = nil
	d.width, d.height = 0, 0
	d.hasSwapChain = false
}

func (d *Device) BeginFrame() error {
	if !d.hasSwapChain {
		return render.ErrNoSwapChain
	}
	d.surface.MakeContextCurrent()
	gl.Viewport(0, 0, int32(d.width), int32(d.height))
	r, g, b := config.GetClearColor()
	gl.ClearColor(r, g, b, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	d.inFrame = true
	return nil
}

func (d *Device) EndFrame() error {
	if !d.inFrame {
		return errFrameNotOpen
	}
	d.inFrame = false
	d.surface.SwapBuffers()
	return nil
}

// Draw ignores the call's shader and flat-colors the geometry. Fixed
// function lighting stays off: it would transform normals by the modelview
// stack, which here carries the full combined matrix, so shading would
// shift with the projection. The combined matrix can then live entirely on
// the modelview stack.
func (d *Device) Draw(call render.DrawCall) error {
	if !d.inFrame {
		return errFrameNotOpen
	}
	if call.Vertex == nil || call.Index == nil {
		return errors.New("gl21backend: incomplete draw call")
	}

	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.MatrixMode(gl.MODELVIEW)
	mvp := call.MVP
	gl.LoadMatrixf(&mvp[0])

	gl.Color3f(0.55, 0.70, 0.45)
	call.Vertex.Bind()
	call.Index.Bind()
	gl.DrawElements(gl.TRIANGLES, int32(call.IndexCount), gl.UNSIGNED_INT, gl.PtrOffset(0))
	call.Index.Unbind()
	call.Vertex.Unbind()
	return nil
}

func (d *Device) WaitIdle() {
	if d.initialized {
		gl.Finish()
	}
}

func (d *Device) Shutdown() {
	if !d.initialized {
		return
	}
	gl.Finish()
	d.DestroySwapChain()
	d.window = nil
	d.initialized = false
}

// CreateShader is not available on this backend; Draw flat-colors the
// geometry instead.
func (d *Device) CreateShader(vertexSrc, fragmentSrc string) (render.Shader, error) {
	return nil, errNoShaders
}

// CreateUniformBuffer is not available before OpenGL 3.1.
func (d *Device) CreateUniformBuffer(size int) (render.Buffer, error) {
	return nil, errNoUniformBufs
}
