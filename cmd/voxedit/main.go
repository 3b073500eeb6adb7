package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"

	"voxedit/internal/config"
	"voxedit/internal/game"
	"voxedit/internal/graphics"
	"voxedit/internal/meshing"
	"voxedit/internal/profiling"
	"voxedit/internal/render"
	_ "voxedit/internal/render/gl21backend"
	"voxedit/internal/render/glbackend"
	_ "voxedit/internal/render/vkbackend"
	_ "voxedit/internal/render/wgpustub"
	"voxedit/internal/world"
)

const (
	mainWinWidth  = 420
	mainWinHeight = 260

	viewportWidth  = 1100
	viewportHeight = 700
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := config.LoadFile("voxedit.toml"); err != nil && !os.IsNotExist(err) {
		log.Printf("config: %v", err)
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("glfw init: %v", err)
	}

	dev := pickDevice()
	if dev == nil {
		glfw.Terminate()
		log.Fatalf("no render backend available (registered: %v)", render.Available())
	}
	log.Printf("using %s backend", dev.Name())

	mainWin, viewportWin, err := setupWindows(dev.Name())
	if err != nil {
		glfw.Terminate()
		log.Fatalf("window setup: %v", err)
	}

	ctx := render.NewContext(dev)
	closer.Bind(func() {
		ctx.Shutdown()
		glfw.Terminate()
	})

	if !ctx.Initialize(mainWin) {
		closer.Close()
		return
	}
	if dev.Name() == render.BackendOpenGL || dev.Name() == render.BackendOpenGL21 {
		if config.GetVSync() {
			glfw.SwapInterval(1)
		} else {
			glfw.SwapInterval(0)
		}
	}

	if !ctx.SetViewportWindow(viewportWin) {
		closer.Close()
		return
	}
	fbw, fbh := viewportWin.GetFramebufferSize()
	if !ctx.RecreateSwapChain(fbw, fbh) {
		closer.Close()
		return
	}
	if shader := loadChunkShader(ctx, dev.Name()); shader != nil {
		ctx.SetChunkShader(shader)
	} else {
		log.Printf("no chunk shader; frames will present the clear color only")
	}
	if tex := loadPaletteTexture(ctx); tex != nil {
		closer.Bind(tex.Release)
	}

	w := world.New(meshing.Build)
	seedWorld(w)

	cam := graphics.NewCamera(fbw, fbh)
	viewportWin.SetFramebufferSizeCallback(func(win *glfw.Window, width, height int) {
		ctx.RecreateSwapChain(width, height)
		cam.SetViewport(width, height)
	})

	runLoop(ctx, w, cam, mainWin, viewportWin)
	closer.Close()
}

// pickDevice honors an explicit backend from the config and otherwise
// takes the registry default.
func pickDevice() render.Device {
	if name := config.GetBackend(); name != "" {
		dev := render.NewDevice(name)
		if dev == nil {
			log.Printf("backend %q not registered, falling back to default", name)
			return render.DefaultDevice()
		}
		return dev
	}
	return render.DefaultDevice()
}

// setupWindows creates the main editor window plus the separate viewport
// surface presentation binds to. The GL backends get a shared context so
// resources created against the main window are visible in the viewport.
func setupWindows(backend string) (*glfw.Window, *glfw.Window, error) {
	if backend == render.BackendVulkan || backend == render.BackendWebGPU {
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	} else if backend == render.BackendOpenGL21 {
		glfw.WindowHint(glfw.ContextVersionMajor, 2)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
	} else {
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	}

	mainWin, err := glfw.CreateWindow(mainWinWidth, mainWinHeight, "voxedit", nil, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("main window: %w", err)
	}

	viewportWin, err := glfw.CreateWindow(viewportWidth, viewportHeight, "voxedit viewport", nil, mainWin)
	if err != nil {
		mainWin.Destroy()
		return nil, nil, fmt.Errorf("viewport window: %w", err)
	}
	return mainWin, viewportWin, nil
}

// loadChunkShader compiles the chunk shader in the backend's native
// shading language: built-in GLSL for OpenGL, SPIR-V files for Vulkan.
func loadChunkShader(ctx *render.Context, backend string) render.Shader {
	switch backend {
	case render.BackendVulkan:
		vert, err := os.ReadFile("assets/shaders/chunk.vert.spv")
		if err != nil {
			log.Printf("chunk shader: %v", err)
			return nil
		}
		frag, err := os.ReadFile("assets/shaders/chunk.frag.spv")
		if err != nil {
			log.Printf("chunk shader: %v", err)
			return nil
		}
		return ctx.CreateShader(string(vert), string(frag))
	case render.BackendOpenGL:
		return ctx.CreateShader(glbackend.ChunkVertexShader, glbackend.ChunkFragmentShader)
	default:
		// gl21 has no programmable pipeline; wgpu never gets here
		return nil
	}
}

// loadPaletteTexture decodes the block palette and uploads it through the
// active backend's texture factory. A missing asset or a backend without
// texture support only logs; the chunk pipeline draws untextured.
func loadPaletteTexture(ctx *render.Context) render.Texture {
	pix, w, h, err := graphics.LoadPixels("assets/textures/palette.png")
	if err != nil {
		log.Printf("palette texture: %v", err)
		return nil
	}
	return ctx.CreateTexture(w, h, pix)
}

// seedWorld lays out a small editing scene: a flat ground slab with a few
// towers, enough chunks to exercise border dirtying and frustum culling.
func seedWorld(w *world.World) {
	for x := -24; x < 24; x++ {
		for z := -24; z < 24; z++ {
			w.SetBlock(x, 0, z, world.BlockStone)
			w.SetBlock(x, 1, z, world.BlockDirt)
			w.SetBlock(x, 2, z, world.BlockGrass)
		}
	}
	for i, pos := range [][2]int{{-12, -12}, {0, 8}, {14, -4}} {
		for y := 3; y < 9+i*3; y++ {
			w.SetBlock(pos[0], y, pos[1], world.BlockStone)
		}
	}
}

func runLoop(ctx *render.Context, w *world.World, cam *graphics.Camera, mainWin, viewportWin *glfw.Window) {
	limiter := game.NewFPSLimiter()
	frames := 0
	lastFPSCheck := time.Now()
	lastEdit := time.Now()
	start := time.Now()
	editY := 3

	for !mainWin.ShouldClose() && !viewportWin.ShouldClose() {
		profiling.ResetFrame()
		glfw.PollEvents()

		// orbit the scene center
		t := time.Since(start).Seconds() * 0.3
		cam.Position = mgl32.Vec3{
			float32(math.Cos(t)) * 48,
			30,
			float32(math.Sin(t)) * 48,
		}
		cam.LookAt(mgl32.Vec3{0, 4, 0})

		// periodic edits keep the dirty path honest
		if time.Since(lastEdit) > 400*time.Millisecond {
			w.SetBlock(6, editY, 6, world.BlockStone)
			editY++
			if editY > 14 {
				for y := 3; y <= 14; y++ {
					w.SetBlock(6, y, 6, world.BlockAir)
				}
				editY = 3
			}
			lastEdit = time.Now()
		}

		if ctx.BeginFrame() {
			ctx.RenderVoxelWorld(w, cam)
			ctx.EndFrame()
		}
		frames++

		if time.Since(lastFPSCheck) >= time.Second {
			log.Printf("FPS: %d  [%s]", frames, profiling.TopN(3))
			frames = 0
			lastFPSCheck = time.Now()
		}

		limiter.Wait()
	}
}
