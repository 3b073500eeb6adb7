package render

import "unsafe"

// UniformAlignment is the constant-buffer allocation granularity required by
// the explicit command-list backend. Callers must not assume the requested
// uniform size is the allocated size.
const UniformAlignment = 256

// AlignUniformSize rounds size up to the next multiple of alignment. A
// non-positive size still occupies one alignment unit.
func AlignUniformSize(size, alignment int) int {
	if size <= 0 {
		return alignment
	}
	return (size + alignment - 1) &^ (alignment - 1)
}

// Float32Bytes reinterprets a float32 slice as its raw bytes for buffer
// upload. The returned slice aliases v.
func Float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

// Uint32Bytes reinterprets a uint32 slice as its raw bytes for buffer upload.
// The returned slice aliases v.
func Uint32Bytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}
