package camera

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// CameraDataBinding is the binding index of the camera uniform buffer within
// the camera's bind group (group 0 in both sprite programs).
const CameraDataBinding = 0

// GPUCameraData is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraData struct layout of the sprite programs exactly.
// Size: 64 bytes (std140 / WGSL aligned).
type GPUCameraData struct {
	Projection [16]float32 // offset 0: orthographic projection matrix (mat4x4<f32>, column-major)
}

// Size returns the size of the GPUCameraData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUCameraData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraData) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Projection[i]))
	}
	return buf
}
