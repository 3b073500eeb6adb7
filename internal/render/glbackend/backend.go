// Package glbackend implements the render.Device contract on OpenGL 4.1
// core. OpenGL is the immediate single-queue backend: the driver serializes
// all work on one queue, presentation is a buffer swap on the viewport
// surface, and synchronization is a blocking flush.
package glbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxedit/internal/config"
	"voxedit/internal/render"
)

func init() {
	render.Register(render.BackendOpenGL, func() render.Device {
		return &Device{}
	})
}

var errFrameNotOpen = errors.New("glbackend: draw outside BeginFrame/EndFrame")

// Device drives one OpenGL context. The context is created against the main
// window; presentation binds to a separate viewport surface sharing that
// context.
type Device struct {
	window  *glfw.Window
	surface *glfw.Window

	width   int
	height  int
	inFrame bool

	initialized  bool
	hasSwapChain bool

	uniformAlign int
}

func (d *Device) Name() string { return render.BackendOpenGL }

// Init creates the GL context on the main window and loads function
// pointers. No framebuffer is touched; the main window is never drawn to.
func (d *Device) Init(window render.WindowHandle) error {
	win, ok := window.(*glfw.Window)
	if !ok || win == nil {
		return render.ErrNilHandle
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return fmt.Errorf("glbackend: gl init: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	// meshing emits CCW front faces
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	var align int32
	gl.GetIntegerv(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT, &align)
	d.uniformAlign = int(align)
	if d.uniformAlign < 1 {
		d.uniformAlign = render.UniformAlignment
	}

	d.window = win
	d.initialized = true
	return nil
}

// CreateSwapChain binds presentation to the viewport surface. The fresh
// framebuffer is cleared and swapped once so no uninitialized contents are
// ever shown.
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

// DestroySwapChain flushes pending work and detaches from the viewport
// surface. The GL context itself survives for the next CreateSwapChain.
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

// Draw issues one indexed draw with the interleaved position+normal layout.
func (d *Device) Draw(call render.DrawCall) error {
	if !d.inFrame {
		return errFrameNotOpen
	}
	if call.Shader == nil || call.Vertex == nil || call.Index == nil {
		return errors.New("glbackend: incomplete draw call")
	}

	call.Shader.Bind()
	prog := uint32(call.Shader.NativeHandle())
	mvp := call.MVP
	gl.UniformMatrix4fv(gl.GetUniformLocation(prog, gl.Str("mvp\x00")), 1, false, &mvp[0])
	light := mgl32.Vec3{0.3, 1.0, 0.3}.Normalize()
	gl.Uniform3f(gl.GetUniformLocation(prog, gl.Str("lightDir\x00")), light.X(), light.Y(), light.Z())

	call.Vertex.Bind()
	call.Index.Bind()
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(call.IndexCount), gl.UNSIGNED_INT, 0)
	call.Index.Unbind()
	call.Vertex.Unbind()
	return nil
}

// WaitIdle blocks until the driver has executed everything submitted so far.
func (d *Device) WaitIdle() {
	if d.initialized {
		gl.Finish()
	}
}

// Shutdown drains the queue and drops the context references. Buffer,
// texture and shader objects still alive are released through their own
// refcounts; the GL context itself dies with the window.
func (d *Device) Shutdown() {
	if !d.initialized {
		return
	}
	gl.Finish()
	d.DestroySwapChain()
	d.window = nil
	d.initialized = false
}
