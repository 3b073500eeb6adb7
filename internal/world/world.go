package world

// ChunkWithCoord pairs a loaded chunk with its coordinate key for render
// walks.
type ChunkWithCoord struct {
	Coord ChunkCoord
	Chunk *Chunk
}

// World holds the loaded chunks of the edited voxel volume. Loading and
// unloading are driven by the owning application; the render layer only
// enumerates whatever is currently loaded.
type World struct {
	mesher MeshFunc
	chunks map[ChunkCoord]*Chunk
}

// New creates an empty world whose chunks regenerate their meshes through
// mesher.
func New(mesher MeshFunc) *World {
	return &World{
		mesher: mesher,
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// Chunk returns the loaded chunk at coord, or nil.
func (w *World) Chunk(coord ChunkCoord) *Chunk {
	return w.chunks[coord]
}

// LoadChunk returns the chunk at coord, creating an empty one when absent.
func (w *World) LoadChunk(coord ChunkCoord) *Chunk {
	if c, ok := w.chunks[coord]; ok {
		return c
	}
	c := newChunk(coord, w)
	w.chunks[coord] = c
	return c
}

// UnloadChunk drops the chunk at coord. The render layer notices the
// missing cache key on its next walk; the cache entry itself is released
// through the cache's prune pass.
func (w *World) UnloadChunk(coord ChunkCoord) {
	delete(w.chunks, coord)
}

// Chunks returns all loaded chunks. Order is unspecified.
func (w *World) Chunks() []ChunkWithCoord {
	out := make([]ChunkWithCoord, 0, len(w.chunks))
	for coord, c := range w.chunks {
		out = append(out, ChunkWithCoord{Coord: coord, Chunk: c})
	}
	return out
}

// Len returns the number of loaded chunks.
func (w *World) Len() int {
	return len(w.chunks)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// ChunkCoordAt returns the chunk coordinate containing the given world-space
// block position.
func ChunkCoordAt(x, y, z int) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(x, ChunkSize),
		Y: floorDiv(y, ChunkSize),
		Z: floorDiv(z, ChunkSize),
	}
}

// Block returns the block at world-space coordinates; unloaded space is air.
func (w *World) Block(x, y, z int) BlockType {
	c := w.chunks[ChunkCoordAt(x, y, z)]
	if c == nil {
		return BlockAir
	}
	return c.Block(floorMod(x, ChunkSize), floorMod(y, ChunkSize), floorMod(z, ChunkSize))
}

// SetBlock writes the block at world-space coordinates, loading the owning
// chunk on demand. Writes on a chunk border also dirty the touching
// neighbor chunks so their boundary faces are re-evaluated.
func (w *World) SetBlock(x, y, z int, b BlockType) {
	coord := ChunkCoordAt(x, y, z)
	c := w.LoadChunk(coord)
	lx, ly, lz := floorMod(x, ChunkSize), floorMod(y, ChunkSize), floorMod(z, ChunkSize)
	c.SetBlock(lx, ly, lz, b)

	dirtyNeighbor := func(dx, dy, dz int) {
		if n := w.chunks[ChunkCoord{coord.X + dx, coord.Y + dy, coord.Z + dz}]; n != nil {
			n.dirty = true
		}
	}
	if lx == 0 {
		dirtyNeighbor(-1, 0, 0)
	}
	if lx == ChunkSize-1 {
		dirtyNeighbor(1, 0, 0)
	}
	if ly == 0 {
		dirtyNeighbor(0, -1, 0)
	}
	if ly == ChunkSize-1 {
		dirtyNeighbor(0, 1, 0)
	}
	if lz == 0 {
		dirtyNeighbor(0, 0, -1)
	}
	if lz == ChunkSize-1 {
		dirtyNeighbor(0, 0, 1)
	}
}
