package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxedit/internal/config"
	"voxedit/internal/graphics"
	"voxedit/internal/world"
)

// newSingleBlockWorld builds a world whose mesher emits one quad per
// non-empty chunk.
func newSingleBlockWorld(t *testing.T) *world.World {
	t.Helper()
	return world.New(func(wd *world.World, c *world.Chunk) ([]float32, []uint32) {
		for x := 0; x < world.ChunkSize; x++ {
			for y := 0; y < world.ChunkSize; y++ {
				for z := 0; z < world.ChunkSize; z++ {
					if !c.IsAir(x, y, z) {
						return quadMesh()
					}
				}
			}
		}
		return nil, nil
	})
}

// newTestCamera looks down -Z at the origin chunk from a distance.
func newTestCamera() *graphics.Camera {
	cam := graphics.NewCamera(800, 600)
	cam.Position = mgl32.Vec3{8, 8, 48}
	cam.LookAt(mgl32.Vec3{8, 8, 8})
	return cam
}

func TestFrustumCullsChunksBehindCamera(t *testing.T) {
	cam := newTestCamera()
	vp := cam.ProjectionMatrix().Mul4(cam.ViewMatrix())
	planes := ExtractFrustumPlanes(vp)

	// the chunk the camera looks at
	if !AABBIntersectsFrustum(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{16, 16, 16}, planes) {
		t.Errorf("chunk in front of camera culled")
	}
	// a chunk behind the camera
	if AABBIntersectsFrustum(mgl32.Vec3{0, 0, 200}, mgl32.Vec3{16, 16, 216}, planes) {
		t.Errorf("chunk behind camera not culled")
	}
	// far off to the side
	if AABBIntersectsFrustum(mgl32.Vec3{500, 0, 0}, mgl32.Vec3{516, 16, 16}, planes) {
		t.Errorf("chunk far off-axis not culled")
	}
}

func TestFrustumKeepsStraddlingBoxes(t *testing.T) {
	cam := newTestCamera()
	vp := cam.ProjectionMatrix().Mul4(cam.ViewMatrix())
	planes := ExtractFrustumPlanes(vp)

	// box straddling the near plane
	if !AABBIntersectsFrustum(mgl32.Vec3{4, 4, 40}, mgl32.Vec3{12, 12, 56}, planes) {
		t.Errorf("box straddling the near plane culled")
	}
}

func TestRenderSkipsOutOfViewChunks(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)
	ctx.Initialize(&windowStub{})
	ctx.SetViewportWindow(&windowStub{})
	ctx.RecreateSwapChain(800, 600)
	ctx.SetChunkShader(ctx.CreateShader("v", "f"))

	w := newSingleBlockWorld(t)
	// one chunk at origin, one far behind the camera
	w.SetBlock(0, 0, 0, world.BlockStone)
	w.SetBlock(0, 0, 3000, world.BlockStone)

	cam := newTestCamera()
	if !ctx.BeginFrame() {
		t.Fatalf("BeginFrame failed")
	}
	ctx.RenderVoxelWorld(w, cam)
	ctx.EndFrame()

	if len(dev.drawCalls) != 1 {
		t.Errorf("draw calls = %d, want 1 (out-of-view chunk drawn?)", len(dev.drawCalls))
	}
	// both chunks are still meshed and cached; only the draw is culled
	if ctx.Cache().Len() != 2 {
		t.Errorf("cached meshes = %d, want 2", ctx.Cache().Len())
	}
}

func TestRenderHonorsRenderDistance(t *testing.T) {
	config.SetRenderDistance(5)
	defer config.SetRenderDistance(25)

	dev := &fakeDevice{}
	ctx := NewContext(dev)
	ctx.Initialize(&windowStub{})
	ctx.SetViewportWindow(&windowStub{})
	ctx.RecreateSwapChain(800, 600)
	ctx.SetChunkShader(ctx.CreateShader("v", "f"))

	w := newSingleBlockWorld(t)
	// one chunk near the camera, one straight ahead but well past 5 chunks
	w.SetBlock(0, 0, 0, world.BlockStone)
	w.SetBlock(0, 0, -128, world.BlockStone)

	cam := newTestCamera()
	if !ctx.BeginFrame() {
		t.Fatalf("BeginFrame failed")
	}
	ctx.RenderVoxelWorld(w, cam)
	ctx.EndFrame()

	if len(dev.drawCalls) != 1 {
		t.Errorf("draw calls = %d, want 1 (distant chunk drawn?)", len(dev.drawCalls))
	}
	// distance limits drawing, not meshing
	if ctx.Cache().Len() != 2 {
		t.Errorf("cached meshes = %d, want 2", ctx.Cache().Len())
	}

	// widening the distance brings the chunk back
	config.SetRenderDistance(50)
	ctx.BeginFrame()
	ctx.RenderVoxelWorld(w, cam)
	ctx.EndFrame()
	if len(dev.drawCalls) != 3 {
		t.Errorf("draw calls = %d after widening, want 3", len(dev.drawCalls))
	}
}
