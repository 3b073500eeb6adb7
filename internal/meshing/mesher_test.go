package meshing

import (
	"testing"

	"voxedit/internal/world"
)

func faceCount(indices []uint32) int {
	// two triangles per face
	return len(indices) / 6
}

func TestSingleBlockEmitsSixFaces(t *testing.T) {
	w := world.New(Build)
	w.SetBlock(5, 5, 5, world.BlockStone)

	verts, indices := Build(w, w.Chunk(world.ChunkCoord{X: 0, Y: 0, Z: 0}))
	if got := faceCount(indices); got != 6 {
		t.Fatalf("faces = %d, want 6", got)
	}
	if len(verts) != 6*4*VertexStride {
		t.Errorf("vertex floats = %d, want %d", len(verts), 6*4*VertexStride)
	}
	if len(indices) != 6*6 {
		t.Errorf("indices = %d, want %d", len(indices), 6*6)
	}
}

func TestAdjacentBlocksCullSharedFaces(t *testing.T) {
	w := world.New(Build)
	w.SetBlock(5, 5, 5, world.BlockStone)
	w.SetBlock(6, 5, 5, world.BlockStone)

	_, indices := Build(w, w.Chunk(world.ChunkCoord{X: 0, Y: 0, Z: 0}))
	// 12 faces total, minus the two touching ones
	if got := faceCount(indices); got != 10 {
		t.Errorf("faces = %d, want 10", got)
	}
}

func TestChunkBorderCullsAgainstNeighborChunk(t *testing.T) {
	w := world.New(Build)
	// blocks touching across the chunk border at x=15|16
	w.SetBlock(15, 5, 5, world.BlockStone)
	w.SetBlock(16, 5, 5, world.BlockStone)

	_, left := Build(w, w.Chunk(world.ChunkCoord{X: 0, Y: 0, Z: 0}))
	_, right := Build(w, w.Chunk(world.ChunkCoord{X: 1, Y: 0, Z: 0}))
	if got := faceCount(left); got != 5 {
		t.Errorf("left chunk faces = %d, want 5", got)
	}
	if got := faceCount(right); got != 5 {
		t.Errorf("right chunk faces = %d, want 5", got)
	}
}

func TestEmptyChunkProducesEmptyMesh(t *testing.T) {
	w := world.New(Build)
	c := w.LoadChunk(world.ChunkCoord{X: 0, Y: 0, Z: 0})

	verts, indices := Build(w, c)
	if len(verts) != 0 || len(indices) != 0 {
		t.Errorf("empty chunk meshed to %d verts, %d indices", len(verts), len(indices))
	}
}

func TestIndicesReferenceEmittedVertices(t *testing.T) {
	w := world.New(Build)
	w.SetBlock(0, 0, 0, world.BlockStone)
	w.SetBlock(2, 0, 0, world.BlockGrass)

	verts, indices := Build(w, w.Chunk(world.ChunkCoord{X: 0, Y: 0, Z: 0}))
	vertexCount := uint32(len(verts) / VertexStride)
	for i, idx := range indices {
		if idx >= vertexCount {
			t.Fatalf("index %d references vertex %d of %d", i, idx, vertexCount)
		}
	}
}

func BenchmarkBuildFullChunk(b *testing.B) {
	w := world.New(Build)
	for x := 0; x < world.ChunkSize; x++ {
		for y := 0; y < 8; y++ {
			for z := 0; z < world.ChunkSize; z++ {
				w.SetBlock(x, y, z, world.BlockStone)
			}
		}
	}
	c := w.Chunk(world.ChunkCoord{X: 0, Y: 0, Z: 0})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Build(w, c)
	}
}
