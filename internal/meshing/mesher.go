package meshing

import (
	"voxedit/internal/world"
)

// VertexStride is the number of float32 per vertex (pos.xyz + normal.xyz).
const VertexStride = 6

// faceDir describes one of the six cube faces: its neighbor offset, outward
// normal, and the four corner offsets of the face quad in counter-clockwise
// winding when seen from outside.
type faceDir struct {
	dx, dy, dz int
	nx, ny, nz float32
	corners    [4][3]float32
}

// Block centers sit on integer positions; faces extend +-0.5 around them.
var faceDirs = [6]faceDir{
	// +X (east)
	{1, 0, 0, 1, 0, 0, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
	// -X (west)
	{-1, 0, 0, -1, 0, 0, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
	// +Y (top)
	{0, 1, 0, 0, 1, 0, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
	// -Y (bottom)
	{0, -1, 0, 0, -1, 0, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	// +Z (north)
	{0, 0, 1, 0, 0, 1, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
	// -Z (south)
	{0, 0, -1, 0, 0, -1, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
}

// Build generates the indexed face-culled mesh for one chunk in chunk-local
// space: one quad (4 vertices, 6 indices) per block face not covered by a
// solid neighbor. Neighbor lookups go through the world so faces on chunk
// borders are culled against adjacent chunks. An all-air chunk returns two
// empty slices.
func Build(w *world.World, c *world.Chunk) ([]float32, []uint32) {
	if c == nil {
		return nil, nil
	}

	coord := c.Coord()
	baseX := coord.X * world.ChunkSize
	baseY := coord.Y * world.ChunkSize
	baseZ := coord.Z * world.ChunkSize

	vertices := make([]float32, 0, 1024)
	indices := make([]uint32, 0, 512)

	for x := 0; x < world.ChunkSize; x++ {
		for y := 0; y < world.ChunkSize; y++ {
			for z := 0; z < world.ChunkSize; z++ {
				if c.IsAir(x, y, z) {
					continue
				}
				for _, f := range faceDirs {
					nxp, nyp, nzp := x+f.dx, y+f.dy, z+f.dz
					var covered bool
					if nxp >= 0 && nxp < world.ChunkSize &&
						nyp >= 0 && nyp < world.ChunkSize &&
						nzp >= 0 && nzp < world.ChunkSize {
						covered = !c.IsAir(nxp, nyp, nzp)
					} else {
						covered = w.Block(baseX+nxp, baseY+nyp, baseZ+nzp) != world.BlockAir
					}
					if covered {
						continue
					}

					base := uint32(len(vertices) / VertexStride)
					for _, corner := range f.corners {
						vertices = append(vertices,
							float32(x)+corner[0],
							float32(y)+corner[1],
							float32(z)+corner[2],
							f.nx, f.ny, f.nz,
						)
					}
					indices = append(indices,
						base, base+1, base+2,
						base+2, base+3, base,
					)
				}
			}
		}
	}

	return vertices, indices
}
