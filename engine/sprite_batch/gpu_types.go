package sprite_batch

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// UniformSlotSize is the byte stride of one slot in the single-sprite uniform
// arena. WebGPU requires dynamic uniform offsets to be 256-byte aligned, so
// each 96-byte GPUSpriteUniform occupies a 256-byte slot.
const UniformSlotSize = 256

// UniformBufferBinding is the binding index of the uniform arena within the
// batch's uniform bind group (group 1 of the single-sprite program).
const UniformBufferBinding = 0

// GPUSprite is the GPU-aligned representation of one per-sprite record in the
// instanced sprite storage buffer. Matches the WGSL SpriteData struct layout exactly.
// Size: 40 bytes (std430 aligned).
type GPUSprite struct {
	Pos      [2]float32 // offset  0: world-space center position (8 bytes)
	Size     [2]float32 // offset  8: world-space dimensions (8 bytes)
	Flip     [2]int32   // offset 16: per-axis mirror flags, 0 or 1 (8 bytes)
	Rotation float32    // offset 24: rotation in radians, counter-clockwise (4 bytes)
	ZIndex   int32      // offset 28: depth index (4 bytes)
	RegionID uint32     // offset 32: atlas region table index (4 bytes)
	Pad      float32    // offset 36: padding to 40 bytes
}

// ByteSize returns the size of the GPUSprite struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (40)
func (g *GPUSprite) ByteSize() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSprite struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 40-byte buffer ready for GPU upload.
func (g *GPUSprite) Marshal() []byte {
	buf := make([]byte, 40)
	g.MarshalInto(buf)
	return buf
}

// MarshalInto serializes the GPUSprite struct into the first 40 bytes of dst.
// Used by the batch encoder to write records into disjoint ranges of a shared
// upload buffer without per-record allocations.
//
// Parameters:
//   - dst: the destination slice, at least 40 bytes long
func (g *GPUSprite) MarshalInto(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(g.Pos[0]))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(g.Pos[1]))
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(g.Size[0]))
	binary.LittleEndian.PutUint32(dst[12:16], math.Float32bits(g.Size[1]))
	binary.LittleEndian.PutUint32(dst[16:20], uint32(g.Flip[0]))
	binary.LittleEndian.PutUint32(dst[20:24], uint32(g.Flip[1]))
	binary.LittleEndian.PutUint32(dst[24:28], math.Float32bits(g.Rotation))
	binary.LittleEndian.PutUint32(dst[28:32], uint32(g.ZIndex))
	binary.LittleEndian.PutUint32(dst[32:36], g.RegionID)
	binary.LittleEndian.PutUint32(dst[36:40], math.Float32bits(g.Pad))
}

// GPUSpriteUniform is the GPU-aligned representation of the single-sprite
// uniform. Matches the WGSL SpriteUniform struct layout exactly. The model
// matrix is built CPU-side for this path; the instanced path reconstructs it
// in the vertex shader instead.
// Size: 96 bytes (std140 aligned), padded into a 256-byte dynamic-offset slot.
type GPUSpriteUniform struct {
	Model       [16]float32 // offset  0: model matrix (mat4x4<f32>, column-major)
	RegionStart [2]float32  // offset 64: normalized region top-left corner (8 bytes)
	RegionSize  [2]float32  // offset 72: normalized region dimensions (8 bytes)
	Flip        [2]int32    // offset 80: per-axis mirror flags, 0 or 1 (8 bytes)
	Pad         [2]float32  // offset 88: padding to 96 bytes
}

// Size returns the size of the GPUSpriteUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUSpriteUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpriteUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload.
func (g *GPUSpriteUniform) Marshal() []byte {
	buf := make([]byte, 96)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(g.RegionStart[0]))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(g.RegionStart[1]))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(g.RegionSize[0]))
	binary.LittleEndian.PutUint32(buf[76:80], math.Float32bits(g.RegionSize[1]))
	binary.LittleEndian.PutUint32(buf[80:84], uint32(g.Flip[0]))
	binary.LittleEndian.PutUint32(buf[84:88], uint32(g.Flip[1]))
	binary.LittleEndian.PutUint32(buf[88:92], math.Float32bits(g.Pad[0]))
	binary.LittleEndian.PutUint32(buf[92:96], math.Float32bits(g.Pad[1]))
	return buf
}
