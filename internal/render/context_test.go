package render

import "testing"

type windowStub struct{ name string }

func TestSwapChainRequiresViewportSurface(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)
	mainWin := &windowStub{name: "main"}
	viewport := &windowStub{name: "viewport"}

	if !ctx.Initialize(mainWin) {
		t.Fatalf("Initialize failed")
	}
	if dev.swapCreates != 0 {
		t.Fatalf("Init created a swap chain; device init must not touch presentation")
	}

	// no viewport designated yet
	if ctx.RecreateSwapChain(800, 600) {
		t.Errorf("RecreateSwapChain succeeded without a viewport surface")
	}
	if dev.swapCreates != 0 {
		t.Errorf("swap chain created without a viewport surface")
	}

	if ctx.SetViewportWindow(nil) {
		t.Errorf("SetViewportWindow accepted a nil handle")
	}

	if !ctx.SetViewportWindow(viewport) {
		t.Fatalf("SetViewportWindow failed")
	}
	if !ctx.RecreateSwapChain(800, 600) {
		t.Fatalf("RecreateSwapChain failed")
	}
	if dev.swapSurface != WindowHandle(viewport) {
		t.Errorf("swap chain bound to %v, want the viewport surface", dev.swapSurface)
	}
	if dev.swapSurface == WindowHandle(mainWin) {
		t.Errorf("swap chain bound to the main window")
	}
}

func TestResizeValidatesBeforeMutating(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)
	ctx.Initialize(&windowStub{name: "main"})
	ctx.SetViewportWindow(&windowStub{name: "viewport"})
	if !ctx.RecreateSwapChain(800, 600) {
		t.Fatalf("initial swap chain failed")
	}

	for _, dims := range [][2]int{{0, 600}, {800, 0}, {-1, 600}, {800, -5}} {
		if ctx.RecreateSwapChain(dims[0], dims[1]) {
			t.Errorf("RecreateSwapChain(%d, %d) succeeded", dims[0], dims[1])
		}
	}
	if dev.swapDestroys != 0 {
		t.Errorf("invalid resize destroyed the surviving swap chain")
	}
	if ctx.State() != StatePresentable {
		t.Errorf("state = %v after rejected resize, want Presentable", ctx.State())
	}
	if w, h := ctx.SwapChainSize(); w != 800 || h != 600 {
		t.Errorf("size = %dx%d after rejected resize, want 800x600", w, h)
	}

	// valid resize tears down and recreates
	if !ctx.RecreateSwapChain(1024, 768) {
		t.Fatalf("valid resize failed")
	}
	if dev.swapDestroys != 1 || dev.swapCreates != 2 {
		t.Errorf("resize: destroys=%d creates=%d, want 1 and 2", dev.swapDestroys, dev.swapCreates)
	}
	if ctx.State() != StatePresentable {
		t.Errorf("state = %v after resize, want Presentable", ctx.State())
	}
}

func TestSwapChainCreationFailureDropsToViewportBound(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)
	ctx.Initialize(&windowStub{})
	ctx.SetViewportWindow(&windowStub{})
	ctx.RecreateSwapChain(800, 600)

	dev.failSwap = true
	if ctx.RecreateSwapChain(640, 480) {
		t.Fatalf("RecreateSwapChain succeeded despite device failure")
	}
	if ctx.State() != StateViewportBound {
		t.Errorf("state = %v after creation failure, want ViewportBound", ctx.State())
	}
	if ctx.BeginFrame() {
		t.Errorf("BeginFrame succeeded without a swap chain")
	}

	// recovery on the next successful attempt
	dev.failSwap = false
	if !ctx.RecreateSwapChain(640, 480) {
		t.Fatalf("recovery resize failed")
	}
	if ctx.State() != StatePresentable {
		t.Errorf("state = %v after recovery, want Presentable", ctx.State())
	}
}

func TestFrameSkippedWithoutSwapChain(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)
	ctx.Initialize(&windowStub{})

	if ctx.BeginFrame() {
		t.Fatalf("BeginFrame succeeded without a swap chain")
	}
	if dev.beginCount != 0 {
		t.Errorf("device BeginFrame called %d times, want 0", dev.beginCount)
	}
	// EndFrame without an open frame is a no-op
	ctx.EndFrame()
	if dev.endCount != 0 {
		t.Errorf("device EndFrame called %d times, want 0", dev.endCount)
	}
}

func TestContextLifecycle(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)

	if ctx.State() != StateUninitialized {
		t.Fatalf("fresh context state = %v", ctx.State())
	}
	if !ctx.Initialize(&windowStub{name: "main"}) {
		t.Fatalf("Initialize failed")
	}
	if ctx.State() != StateDeviceReady {
		t.Fatalf("state = %v after Initialize, want DeviceReady", ctx.State())
	}
	if !ctx.SetViewportWindow(&windowStub{name: "viewport"}) {
		t.Fatalf("SetViewportWindow failed")
	}
	if ctx.State() != StateViewportBound {
		t.Fatalf("state = %v after SetViewportWindow, want ViewportBound", ctx.State())
	}
	if !ctx.RecreateSwapChain(800, 600) {
		t.Fatalf("RecreateSwapChain failed")
	}
	if ctx.State() != StatePresentable {
		t.Fatalf("state = %v after swap chain, want Presentable", ctx.State())
	}

	for i := 0; i < 3; i++ {
		if !ctx.BeginFrame() {
			t.Fatalf("BeginFrame %d failed", i)
		}
		ctx.EndFrame()
	}
	if dev.beginCount != 3 || dev.endCount != 3 {
		t.Errorf("frames: begin=%d end=%d, want 3 each", dev.beginCount, dev.endCount)
	}

	// resize mid-run keeps the context presentable
	if !ctx.RecreateSwapChain(1280, 720) {
		t.Fatalf("resize failed")
	}
	if !ctx.BeginFrame() {
		t.Fatalf("BeginFrame after resize failed")
	}
	ctx.EndFrame()

	shader, _ := dev.CreateShader("v", "f")
	ctx.SetChunkShader(shader)

	ctx.Shutdown()
	if ctx.State() != StateUninitialized {
		t.Errorf("state = %v after Shutdown, want Uninitialized", ctx.State())
	}
	if dev.shutdowns != 1 {
		t.Errorf("device Shutdown called %d times, want 1", dev.shutdowns)
	}
	if dev.idleCount == 0 {
		t.Errorf("Shutdown did not wait for GPU idle")
	}
	if !shader.(*fakeShader).released {
		t.Errorf("chunk shader not released on Shutdown")
	}
	if ctx.BeginFrame() {
		t.Errorf("BeginFrame succeeded after Shutdown")
	}
}

func TestBeginFrameTwiceRejected(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)
	ctx.Initialize(&windowStub{})
	ctx.SetViewportWindow(&windowStub{})
	ctx.RecreateSwapChain(800, 600)

	if !ctx.BeginFrame() {
		t.Fatalf("BeginFrame failed")
	}
	if ctx.BeginFrame() {
		t.Errorf("second BeginFrame succeeded without EndFrame")
	}
	ctx.EndFrame()
}

func TestFactoryWrappersReturnNilOnFailure(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)

	// before Initialize every factory refuses
	if b := ctx.CreateVertexBuffer([]byte{1}); b != nil {
		t.Errorf("CreateVertexBuffer before Initialize returned %v", b)
	}
	if s := ctx.CreateShader("v", "f"); s != nil {
		t.Errorf("CreateShader before Initialize returned %v", s)
	}

	ctx.Initialize(&windowStub{})
	if b := ctx.CreateVertexBuffer(nil); b != nil {
		t.Errorf("CreateVertexBuffer(nil) returned %v, want nil", b)
	}
	if b := ctx.CreateVertexBuffer([]byte{1, 2, 3, 4}); b == nil {
		t.Errorf("CreateVertexBuffer failed on valid data")
	}
	if tex := ctx.CreateTexture(2, 2, make([]byte, 16)); tex != nil {
		t.Errorf("CreateTexture returned %v from a device without texture support", tex)
	}
}

func TestUniformBufferReportsAlignedSize(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)
	ctx.Initialize(&windowStub{})

	b := ctx.CreateUniformBuffer(60)
	if b == nil {
		t.Fatalf("CreateUniformBuffer failed")
	}
	if b.Size() != 256 {
		t.Errorf("uniform buffer size = %d, want 256", b.Size())
	}
	if err := b.UpdateData(make([]byte, 256), 0); err != nil {
		t.Errorf("full update of aligned buffer failed: %v", err)
	}
	if err := b.UpdateData(make([]byte, 64), 300); err == nil {
		t.Errorf("out-of-range update succeeded")
	}
}
