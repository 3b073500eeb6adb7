package render

import (
	"log"

	"voxedit/internal/world"
)

// ChunkMesher is the view of a voxel chunk the cache depends on: a dirty
// flag plus regenerated vertex/index streams. *world.Chunk satisfies it.
type ChunkMesher interface {
	IsDirty() bool
	SetClean()
	RegenerateMesh()
	MeshVertices() []float32
	MeshIndices() []uint32
}

// ChunkRenderData is one cache entry: the GPU-resident mesh of a single
// chunk. The entry owns its vertex and index buffer as a pair; they are
// always replaced together, never patched in place.
type ChunkRenderData struct {
	vertices   Buffer
	indices    Buffer
	indexCount int
}

// VertexBuffer returns the entry's vertex buffer.
func (d *ChunkRenderData) VertexBuffer() Buffer { return d.vertices }

// IndexBuffer returns the entry's index buffer.
func (d *ChunkRenderData) IndexBuffer() Buffer { return d.indices }

// IndexCount returns the number of indices to draw.
func (d *ChunkRenderData) IndexCount() int { return d.indexCount }

func (d *ChunkRenderData) release() {
	if d.vertices != nil {
		d.vertices.Release()
	}
	if d.indices != nil {
		d.indices.Release()
	}
}

// ChunkMeshCache streams chunk geometry to GPU memory, keyed by chunk
// coordinate. Mutated only by the render call on the render thread.
type ChunkMeshCache struct {
	entries map[world.ChunkCoord]*ChunkRenderData
}

// NewChunkMeshCache returns an empty cache.
func NewChunkMeshCache() *ChunkMeshCache {
	return &ChunkMeshCache{
		entries: make(map[world.ChunkCoord]*ChunkRenderData),
	}
}

// Entry returns the cached render data for coord, or nil.
func (c *ChunkMeshCache) Entry(coord world.ChunkCoord) *ChunkRenderData {
	return c.entries[coord]
}

// Len returns the number of cached chunk meshes.
func (c *ChunkMeshCache) Len() int {
	return len(c.entries)
}

// Ensure brings the cache entry for coord up to date. A chunk that is clean
// and already cached is returned as-is; a dirty or uncached chunk has its
// mesh regenerated, its dirty flag cleared, and its entry replaced
// wholesale (old buffer pair released). A chunk whose regenerated mesh is
// empty ends with no entry and nil is returned — that is the expected state
// for all-air chunks, not an error.
func (c *ChunkMeshCache) Ensure(dev Device, coord world.ChunkCoord, ch ChunkMesher) *ChunkRenderData {
	entry := c.entries[coord]
	if entry != nil && !ch.IsDirty() {
		return entry
	}

	ch.RegenerateMesh()
	ch.SetClean()

	if entry != nil {
		entry.release()
		delete(c.entries, coord)
	}

	verts := ch.MeshVertices()
	indices := ch.MeshIndices()
	if len(verts) == 0 || len(indices) == 0 {
		return nil
	}

	vb, err := dev.CreateVertexBuffer(Float32Bytes(verts))
	if err != nil {
		log.Printf("chunk cache: vertex buffer for %v: %v", coord, err)
		return nil
	}
	ib, err := dev.CreateIndexBuffer(Uint32Bytes(indices))
	if err != nil {
		log.Printf("chunk cache: index buffer for %v: %v", coord, err)
		vb.Release()
		return nil
	}

	entry = &ChunkRenderData{
		vertices:   vb,
		indices:    ib,
		indexCount: len(indices),
	}
	c.entries[coord] = entry
	return entry
}

// Remove drops the entry for coord and releases its buffers.
func (c *ChunkMeshCache) Remove(coord world.ChunkCoord) {
	if entry := c.entries[coord]; entry != nil {
		entry.release()
		delete(c.entries, coord)
	}
}

// Prune drops every entry whose chunk is no longer loaded, releasing the
// buffers. Keep reports whether a coordinate is still loaded.
func (c *ChunkMeshCache) Prune(keep func(world.ChunkCoord) bool) int {
	removed := 0
	for coord, entry := range c.entries {
		if keep(coord) {
			continue
		}
		entry.release()
		delete(c.entries, coord)
		removed++
	}
	return removed
}

// Clear releases all entries. Called during shutdown before the swap chain
// goes away.
func (c *ChunkMeshCache) Clear() {
	for coord, entry := range c.entries {
		entry.release()
		delete(c.entries, coord)
	}
}
