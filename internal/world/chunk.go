package world

// ChunkSize is the edge length of an editor chunk in blocks. Editor chunks
// are cubic, unlike the tall column chunks of the original sandbox.
const ChunkSize = 16

const chunkVolume = ChunkSize * ChunkSize * ChunkSize

// ChunkCoord is the integer-triple key of a chunk in chunk space.
type ChunkCoord struct {
	X, Y, Z int
}

// MeshFunc regenerates the render mesh of a chunk: interleaved
// position+normal vertices (6 float32 per vertex) and a triangle index
// stream. A fully empty chunk yields two empty slices.
type MeshFunc func(*World, *Chunk) (vertices []float32, indices []uint32)

// Chunk is a 16x16x16 block volume. Its mesh data is regenerated on demand
// and consumed by the render layer; the dirty flag records that the voxel
// content changed since the mesh was last generated.
type Chunk struct {
	coord ChunkCoord
	world *World

	blocks [chunkVolume]BlockType
	dirty  bool

	meshVertices []float32
	meshIndices  []uint32
}

func newChunk(coord ChunkCoord, w *World) *Chunk {
	return &Chunk{
		coord: coord,
		world: w,
		dirty: true,
	}
}

// Coord returns the chunk's coordinate key.
func (c *Chunk) Coord() ChunkCoord {
	return c.coord
}

func blockIndex(x, y, z int) int {
	return (x*ChunkSize+y)*ChunkSize + z
}

// Block returns the block at local coordinates, or BlockAir out of bounds.
func (c *Chunk) Block(x, y, z int) BlockType {
	if x < 0 || x >= ChunkSize || y < 0 || y >= ChunkSize || z < 0 || z >= ChunkSize {
		return BlockAir
	}
	return c.blocks[blockIndex(x, y, z)]
}

// SetBlock sets the block at local coordinates and marks the chunk dirty
// when the content actually changed. Out-of-bounds writes are ignored.
func (c *Chunk) SetBlock(x, y, z int, b BlockType) {
	if x < 0 || x >= ChunkSize || y < 0 || y >= ChunkSize || z < 0 || z >= ChunkSize {
		return
	}
	idx := blockIndex(x, y, z)
	if c.blocks[idx] != b {
		c.blocks[idx] = b
		c.dirty = true
	}
}

// IsAir reports whether the block at local coordinates is air.
func (c *Chunk) IsAir(x, y, z int) bool {
	return c.Block(x, y, z) == BlockAir
}

// IsDirty reports whether the voxel content changed since the last mesh
// regeneration.
func (c *Chunk) IsDirty() bool {
	return c.dirty
}

// SetClean clears the dirty flag.
func (c *Chunk) SetClean() {
	c.dirty = false
}

// RegenerateMesh rebuilds the chunk's mesh data through the world's mesher.
// It does not clear the dirty flag; the consumer clears it once the fresh
// mesh has been taken over.
func (c *Chunk) RegenerateMesh() {
	if c.world == nil || c.world.mesher == nil {
		c.meshVertices, c.meshIndices = nil, nil
		return
	}
	c.meshVertices, c.meshIndices = c.world.mesher(c.world, c)
}

// MeshVertices returns the vertex stream from the last RegenerateMesh call.
func (c *Chunk) MeshVertices() []float32 {
	return c.meshVertices
}

// MeshIndices returns the index stream from the last RegenerateMesh call.
func (c *Chunk) MeshIndices() []uint32 {
	return c.meshIndices
}
