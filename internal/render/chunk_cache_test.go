package render

import (
	"testing"

	"voxedit/internal/world"
)

func TestEnsureCleanChunkIsIdempotent(t *testing.T) {
	dev := &fakeDevice{}
	cache := NewChunkMeshCache()
	coord := world.ChunkCoord{X: 1, Y: 0, Z: -2}

	verts, indices := quadMesh()
	m := &fakeMesher{dirty: true, verts: verts, indices: indices}

	first := cache.Ensure(dev, coord, m)
	if first == nil {
		t.Fatalf("Ensure returned nil for a non-empty mesh")
	}
	if m.regens != 1 {
		t.Fatalf("regens = %d after first ensure, want 1", m.regens)
	}

	vbHandle := first.VertexBuffer().NativeHandle()
	ibHandle := first.IndexBuffer().NativeHandle()

	for i := 0; i < 5; i++ {
		got := cache.Ensure(dev, coord, m)
		if got != first {
			t.Fatalf("ensure %d replaced the entry of a clean chunk", i)
		}
	}
	if m.regens != 1 {
		t.Errorf("regens = %d after repeated clean ensures, want 1", m.regens)
	}
	if first.VertexBuffer().NativeHandle() != vbHandle ||
		first.IndexBuffer().NativeHandle() != ibHandle {
		t.Errorf("buffer handles changed across clean ensures")
	}
}

func TestEnsureDirtyChunkReplacesEntryWholesale(t *testing.T) {
	dev := &fakeDevice{}
	cache := NewChunkMeshCache()
	coord := world.ChunkCoord{X: 0, Y: 0, Z: 0}

	verts, indices := quadMesh()
	m := &fakeMesher{dirty: true, verts: verts, indices: indices}

	first := cache.Ensure(dev, coord, m)
	oldVB := first.VertexBuffer().(*fakeBuffer)
	oldIB := first.IndexBuffer().(*fakeBuffer)

	m.dirty = true
	second := cache.Ensure(dev, coord, m)
	if second == nil {
		t.Fatalf("Ensure returned nil on dirty regeneration")
	}
	if second == first {
		t.Fatalf("dirty ensure reused the old entry")
	}
	if m.regens != 2 {
		t.Errorf("regens = %d, want 2", m.regens)
	}
	if m.dirty {
		t.Errorf("dirty flag not cleared by ensure")
	}
	if !oldVB.released || !oldIB.released {
		t.Errorf("old buffer pair not released on replacement (vb=%v ib=%v)", oldVB.released, oldIB.released)
	}
	newVB := second.VertexBuffer().(*fakeBuffer)
	if newVB.released {
		t.Errorf("fresh vertex buffer already released")
	}
	if second.VertexBuffer().NativeHandle() == oldVB.NativeHandle() {
		t.Errorf("replacement entry reuses the old vertex buffer handle")
	}
	if cache.Entry(coord) != second {
		t.Errorf("cache entry is not the replacement")
	}
}

func TestEnsureEmptyMeshLeavesNoEntry(t *testing.T) {
	dev := &fakeDevice{}
	cache := NewChunkMeshCache()
	coord := world.ChunkCoord{X: 3, Y: 1, Z: 3}

	m := &fakeMesher{dirty: true}
	if got := cache.Ensure(dev, coord, m); got != nil {
		t.Fatalf("Ensure returned %v for an empty mesh, want nil", got)
	}
	if cache.Entry(coord) != nil {
		t.Errorf("empty mesh left a cache entry")
	}
	if cache.Len() != 0 {
		t.Errorf("cache length = %d, want 0", cache.Len())
	}
	if m.cleans != 1 {
		t.Errorf("dirty flag not cleared for empty mesh")
	}

	// a chunk edited down to nothing drops its previous entry
	verts, indices := quadMesh()
	m2 := &fakeMesher{dirty: true, verts: verts, indices: indices}
	entry := cache.Ensure(dev, coord, m2)
	oldVB := entry.VertexBuffer().(*fakeBuffer)

	m2.dirty = true
	m2.verts = nil
	m2.indices = nil
	if got := cache.Ensure(dev, coord, m2); got != nil {
		t.Fatalf("Ensure returned %v after chunk emptied, want nil", got)
	}
	if cache.Entry(coord) != nil {
		t.Errorf("emptied chunk still has a cache entry")
	}
	if !oldVB.released {
		t.Errorf("emptied chunk's old buffers not released")
	}
}

func TestCacheRemoveAndPruneReleaseBuffers(t *testing.T) {
	dev := &fakeDevice{}
	cache := NewChunkMeshCache()

	verts, indices := quadMesh()
	coords := []world.ChunkCoord{{X: 0}, {X: 1}, {X: 2}}
	buffers := make([]*fakeBuffer, 0, len(coords))
	for _, coord := range coords {
		m := &fakeMesher{dirty: true, verts: verts, indices: indices}
		entry := cache.Ensure(dev, coord, m)
		buffers = append(buffers, entry.VertexBuffer().(*fakeBuffer))
	}

	cache.Remove(coords[0])
	if !buffers[0].released {
		t.Errorf("Remove did not release buffers")
	}
	if cache.Len() != 2 {
		t.Fatalf("cache length = %d after remove, want 2", cache.Len())
	}

	removed := cache.Prune(func(c world.ChunkCoord) bool { return c == coords[1] })
	if removed != 1 {
		t.Errorf("Prune removed %d entries, want 1", removed)
	}
	if !buffers[2].released {
		t.Errorf("Prune did not release the dropped entry's buffers")
	}
	if buffers[1].released {
		t.Errorf("Prune released a kept entry's buffers")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("cache length = %d after Clear, want 0", cache.Len())
	}
	if !buffers[1].released {
		t.Errorf("Clear did not release remaining buffers")
	}
}

func TestRenderMeshesTwoDirtyChunksSeparately(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)
	ctx.Initialize(&windowStub{})
	ctx.SetViewportWindow(&windowStub{})
	ctx.RecreateSwapChain(800, 600)
	ctx.SetChunkShader(ctx.CreateShader("v", "f"))

	quadVerts, quadIndices := quadMesh()
	doubleVerts := make([]float32, 8*6)
	doubleIndices := []uint32{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}
	w := world.New(func(wd *world.World, c *world.Chunk) ([]float32, []uint32) {
		if c.Coord().X == 0 {
			return quadVerts, quadIndices
		}
		return doubleVerts, doubleIndices
	})
	w.SetBlock(0, 0, 0, world.BlockStone)
	w.SetBlock(16, 0, 0, world.BlockStone)

	if !ctx.BeginFrame() {
		t.Fatalf("BeginFrame failed")
	}
	ctx.RenderVoxelWorld(w, newTestCamera())
	ctx.EndFrame()

	if ctx.Cache().Len() != 2 {
		t.Fatalf("cached meshes = %d, want 2", ctx.Cache().Len())
	}
	a := ctx.Cache().Entry(world.ChunkCoord{X: 0})
	b := ctx.Cache().Entry(world.ChunkCoord{X: 1})
	if a == nil || b == nil {
		t.Fatalf("missing entries: a=%v b=%v", a, b)
	}
	if a.VertexBuffer().NativeHandle() == b.VertexBuffer().NativeHandle() {
		t.Errorf("both chunks share a vertex buffer")
	}
	if a.IndexBuffer().NativeHandle() == b.IndexBuffer().NativeHandle() {
		t.Errorf("both chunks share an index buffer")
	}
	if a.IndexCount() != len(quadIndices) {
		t.Errorf("chunk 0 index count = %d, want %d", a.IndexCount(), len(quadIndices))
	}
	if b.IndexCount() != len(doubleIndices) {
		t.Errorf("chunk 1 index count = %d, want %d", b.IndexCount(), len(doubleIndices))
	}
	if w.Chunk(world.ChunkCoord{X: 0}).IsDirty() {
		t.Errorf("chunk 0 still dirty after render")
	}
}

func TestRenderVoxelWorldDirtyFlagProtocol(t *testing.T) {
	dev := &fakeDevice{}
	ctx := NewContext(dev)
	ctx.Initialize(&windowStub{})
	ctx.SetViewportWindow(&windowStub{})
	ctx.RecreateSwapChain(800, 600)
	ctx.SetChunkShader(ctx.CreateShader("v", "f"))

	w := world.New(func(wd *world.World, c *world.Chunk) ([]float32, []uint32) {
		if c.IsAir(0, 0, 0) {
			return nil, nil
		}
		return quadMesh()
	})
	w.SetBlock(0, 0, 0, world.BlockStone)

	cam := newTestCamera()

	if !ctx.BeginFrame() {
		t.Fatalf("BeginFrame failed")
	}
	ctx.RenderVoxelWorld(w, cam)
	ctx.EndFrame()

	if len(dev.drawCalls) != 1 {
		t.Fatalf("draw calls = %d, want 1", len(dev.drawCalls))
	}
	entry := ctx.Cache().Entry(world.ChunkCoord{})
	if entry == nil {
		t.Fatalf("no cache entry after render")
	}
	firstHandle := entry.VertexBuffer().NativeHandle()

	// clean re-render keeps the entry
	ctx.BeginFrame()
	ctx.RenderVoxelWorld(w, cam)
	ctx.EndFrame()
	if got := ctx.Cache().Entry(world.ChunkCoord{}); got.VertexBuffer().NativeHandle() != firstHandle {
		t.Errorf("clean re-render replaced the cached mesh")
	}

	// editing the chunk dirties it; the next render rebuilds
	w.SetBlock(1, 0, 0, world.BlockDirt)
	ctx.BeginFrame()
	ctx.RenderVoxelWorld(w, cam)
	ctx.EndFrame()
	if got := ctx.Cache().Entry(world.ChunkCoord{}); got.VertexBuffer().NativeHandle() == firstHandle {
		t.Errorf("dirty chunk's mesh was not rebuilt")
	}

	// unloading drops the cache entry on the next walk
	w.UnloadChunk(world.ChunkCoord{})
	ctx.BeginFrame()
	ctx.RenderVoxelWorld(w, cam)
	ctx.EndFrame()
	if ctx.Cache().Entry(world.ChunkCoord{}) != nil {
		t.Errorf("unloaded chunk still cached")
	}
}
