package render

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"voxedit/internal/config"
	"voxedit/internal/graphics"
	"voxedit/internal/profiling"
	"voxedit/internal/world"
)

// Context is the one-per-process render context. It owns the lifecycle
// state machine, the designated viewport surface, and the chunk mesh
// cache, and forwards to the backend Device only the calls that are legal
// in its current state. All methods must be called from the render thread.
type Context struct {
	dev   Device
	state ContextState

	// the sole surface presentation may ever bind to; the main window is
	// never presentable
	viewport     WindowHandle
	width        int
	height       int
	hasSwapChain bool
	inFrame      bool

	cache       *ChunkMeshCache
	chunkShader Shader
}

// NewContext wraps a backend device. The context starts Uninitialized.
func NewContext(dev Device) *Context {
	return &Context{
		dev:   dev,
		cache: NewChunkMeshCache(),
	}
}

// State returns the current lifecycle state.
func (c *Context) State() ContextState { return c.state }

// Device returns the wrapped backend device.
func (c *Context) Device() Device { return c.dev }

// Cache returns the chunk mesh cache.
func (c *Context) Cache() *ChunkMeshCache { return c.cache }

// SwapChainSize returns the current swap chain dimensions, or zeros when
// none exists.
func (c *Context) SwapChainSize() (int, int) {
	if !c.hasSwapChain {
		return 0, 0
	}
	return c.width, c.height
}

// Initialize creates the device/context only. No swap chain or
// render-target view exists afterwards; presentation is bound later via
// SetViewportWindow and RecreateSwapChain. A failure here is fatal for the
// caller: false is returned and the context stays Uninitialized.
func (c *Context) Initialize(window WindowHandle) bool {
	if c.state != StateUninitialized {
		log.Printf("render: Initialize called in state %v", c.state)
		return false
	}
	if c.dev == nil {
		log.Printf("render: Initialize: no device")
		return false
	}
	if err := c.dev.Init(window); err != nil {
		log.Printf("render: %s device init failed: %v", c.dev.Name(), err)
		return false
	}
	c.state = StateDeviceReady
	return true
}

// SetViewportWindow designates the surface the swap chain will bind to.
// Returns false on a nil handle or when called before Initialize. The
// handle is recorded once; every later swap-chain (re)creation targets it.
func (c *Context) SetViewportWindow(surface WindowHandle) bool {
	if c.state == StateUninitialized {
		log.Printf("render: SetViewportWindow before Initialize")
		return false
	}
	if surface == nil {
		log.Printf("render: SetViewportWindow: %v", ErrNilHandle)
		return false
	}
	c.viewport = surface
	if c.state == StateDeviceReady {
		c.state = StateViewportBound
	}
	return true
}

// RecreateSwapChain builds (or rebuilds, on resize) the swap chain against
// the recorded viewport surface. Invalid dimensions and a missing viewport
// return false without touching any existing swap chain; only after
// validation passes is the old chain flushed and destroyed. On a platform
// creation failure the old chain is already gone, so the context drops
// back to ViewportBound and the next frame is skipped rather than drawn
// into nothing.
func (c *Context) RecreateSwapChain(width, height int) bool {
	if width <= 0 || height <= 0 {
		log.Printf("render: RecreateSwapChain rejected size %dx%d", width, height)
		return false
	}
	if c.viewport == nil {
		log.Printf("render: RecreateSwapChain: %v", ErrNoViewport)
		return false
	}
	if c.state == StateUninitialized {
		log.Printf("render: RecreateSwapChain before Initialize")
		return false
	}

	if c.hasSwapChain {
		c.dev.WaitIdle()
		c.dev.DestroySwapChain()
		c.hasSwapChain = false
		c.state = StateViewportBound
	}

	if err := c.dev.CreateSwapChain(c.viewport, width, height); err != nil {
		log.Printf("render: swap chain %dx%d failed: %v", width, height, err)
		return false
	}
	c.width = width
	c.height = height
	c.hasSwapChain = true
	c.state = StatePresentable
	return true
}

// BeginFrame starts a frame. Returning false means "skip this frame"
// (no swap chain yet, or mid-resize), not an error.
func (c *Context) BeginFrame() bool {
	if !c.hasSwapChain {
		return false
	}
	if c.inFrame {
		log.Printf("render: BeginFrame called twice without EndFrame")
		return false
	}
	if err := c.dev.BeginFrame(); err != nil {
		log.Printf("render: BeginFrame: %v", err)
		return false
	}
	c.inFrame = true
	return true
}

// EndFrame submits the recorded work and presents. A no-op unless a frame
// is open.
func (c *Context) EndFrame() {
	if !c.inFrame {
		return
	}
	c.inFrame = false
	if err := c.dev.EndFrame(); err != nil {
		log.Printf("render: EndFrame: %v", err)
	}
}

// WaitIdle blocks until the GPU has drained all submitted work.
func (c *Context) WaitIdle() {
	if c.state == StateUninitialized {
		return
	}
	c.dev.WaitIdle()
}

// Shutdown tears everything down in reverse dependency order: GPU idle,
// cached chunk meshes, chunk shader, swap chain, then the device itself.
// The context returns to Uninitialized and can be re-initialized.
func (c *Context) Shutdown() {
	if c.state == StateUninitialized {
		return
	}
	c.dev.WaitIdle()
	c.cache.Clear()
	if c.chunkShader != nil {
		c.chunkShader.Release()
		c.chunkShader = nil
	}
	if c.hasSwapChain {
		c.dev.DestroySwapChain()
		c.hasSwapChain = false
	}
	c.dev.Shutdown()
	c.viewport = nil
	c.width, c.height = 0, 0
	c.inFrame = false
	c.state = StateUninitialized
}

// SetChunkShader installs the shader RenderVoxelWorld draws chunks with.
// The context takes over the caller's reference and releases any
// previously installed shader.
func (c *Context) SetChunkShader(s Shader) {
	if c.chunkShader != nil {
		c.chunkShader.Release()
	}
	c.chunkShader = s
}

// CreateVertexBuffer wraps the device factory with the nil-on-failure
// policy: a failed creation is logged and yields nil, never a panic.
func (c *Context) CreateVertexBuffer(data []byte) Buffer {
	if c.state == StateUninitialized {
		log.Printf("render: CreateVertexBuffer: %v", ErrNotInitialized)
		return nil
	}
	b, err := c.dev.CreateVertexBuffer(data)
	if err != nil {
		log.Printf("render: CreateVertexBuffer: %v", err)
		return nil
	}
	return b
}

// CreateIndexBuffer wraps the device factory; nil + log on failure.
func (c *Context) CreateIndexBuffer(data []byte) Buffer {
	if c.state == StateUninitialized {
		log.Printf("render: CreateIndexBuffer: %v", ErrNotInitialized)
		return nil
	}
	b, err := c.dev.CreateIndexBuffer(data)
	if err != nil {
		log.Printf("render: CreateIndexBuffer: %v", err)
		return nil
	}
	return b
}

// CreateUniformBuffer wraps the device factory; nil + log on failure. The
// returned buffer reports the backend-aligned allocated size, which may
// exceed the requested size.
func (c *Context) CreateUniformBuffer(size int) Buffer {
	if c.state == StateUninitialized {
		log.Printf("render: CreateUniformBuffer: %v", ErrNotInitialized)
		return nil
	}
	b, err := c.dev.CreateUniformBuffer(size)
	if err != nil {
		log.Printf("render: CreateUniformBuffer(%d): %v", size, err)
		return nil
	}
	return b
}

// CreateTexture wraps the device factory; nil + log on failure.
func (c *Context) CreateTexture(width, height int, pixels []byte) Texture {
	if c.state == StateUninitialized {
		log.Printf("render: CreateTexture: %v", ErrNotInitialized)
		return nil
	}
	t, err := c.dev.CreateTexture(width, height, pixels)
	if err != nil {
		log.Printf("render: CreateTexture %dx%d: %v", width, height, err)
		return nil
	}
	return t
}

// CreateShader wraps the device factory; nil + log on failure. Compiler
// diagnostics arrive verbatim in the logged error.
func (c *Context) CreateShader(vertexSrc, fragmentSrc string) Shader {
	if c.state == StateUninitialized {
		log.Printf("render: CreateShader: %v", ErrNotInitialized)
		return nil
	}
	s, err := c.dev.CreateShader(vertexSrc, fragmentSrc)
	if err != nil {
		log.Printf("render: shader compile failed: %v", err)
		return nil
	}
	return s
}

// RenderVoxelWorld draws every loaded chunk of w from cam's point of view.
// Dirty or uncached chunks have their meshes regenerated and uploaded
// first, synchronously on this thread; at draw time chunks beyond the
// configured render distance or outside the view frustum are skipped.
// Must be called between BeginFrame and EndFrame.
func (c *Context) RenderVoxelWorld(w *world.World, cam *graphics.Camera) {
	if !c.inFrame || c.chunkShader == nil || w == nil || cam == nil {
		return
	}
	defer profiling.Track("render.RenderVoxelWorld")()

	vp := cam.ProjectionMatrix().Mul4(cam.ViewMatrix())
	planes := ExtractFrustumPlanes(vp)

	chunks := w.Chunks()
	for _, cw := range chunks {
		c.cache.Ensure(c.dev, cw.Coord, cw.Chunk)
	}
	c.cache.Prune(func(coord world.ChunkCoord) bool {
		return w.Chunk(coord) != nil
	})

	const size = float32(world.ChunkSize)
	maxDist := float32(config.GetRenderDistance()) * size
	maxDistSq := maxDist * maxDist
	for _, cw := range chunks {
		entry := c.cache.Entry(cw.Coord)
		if entry == nil || entry.IndexCount() == 0 {
			continue
		}

		origin := mgl32.Vec3{
			float32(cw.Coord.X) * size,
			float32(cw.Coord.Y) * size,
			float32(cw.Coord.Z) * size,
		}
		center := origin.Add(mgl32.Vec3{size / 2, size / 2, size / 2})
		if d := center.Sub(cam.Position); d.Dot(d) > maxDistSq {
			continue
		}
		min := origin.Sub(mgl32.Vec3{frustumMargin, frustumMargin, frustumMargin})
		max := origin.Add(mgl32.Vec3{size + frustumMargin, size + frustumMargin, size + frustumMargin})
		if !AABBIntersectsFrustum(min, max, planes) {
			continue
		}

		call := DrawCall{
			Shader:     c.chunkShader,
			Vertex:     entry.VertexBuffer(),
			Index:      entry.IndexBuffer(),
			IndexCount: entry.IndexCount(),
			MVP:        vp.Mul4(mgl32.Translate3D(origin.X(), origin.Y(), origin.Z())),
		}
		if err := c.dev.Draw(call); err != nil {
			log.Printf("render: draw chunk %v: %v", cw.Coord, err)
		}
	}
}
