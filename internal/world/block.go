package world

import "github.com/go-gl/mathgl/mgl32"

// BlockType identifies the content of one voxel cell.
type BlockType uint16

const (
	BlockAir BlockType = iota
	BlockStone
	BlockGrass
	BlockDirt
)

// BlockSize is the world-space edge length of one block.
const BlockSize = 1.0

// Face identifies one of the six axis-aligned block faces.
type Face int

const (
	FaceEast Face = iota // +X
	FaceWest             // -X
	FaceTop              // +Y
	FaceBottom           // -Y
	FaceNorth            // +Z
	FaceSouth            // -Z
)

// FaceNormal returns the outward unit normal of a face.
func FaceNormal(f Face) mgl32.Vec3 {
	switch f {
	case FaceEast:
		return mgl32.Vec3{1, 0, 0}
	case FaceWest:
		return mgl32.Vec3{-1, 0, 0}
	case FaceTop:
		return mgl32.Vec3{0, 1, 0}
	case FaceBottom:
		return mgl32.Vec3{0, -1, 0}
	case FaceNorth:
		return mgl32.Vec3{0, 0, 1}
	default:
		return mgl32.Vec3{0, 0, -1}
	}
}
