package mesh

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUQuadVertex is the GPU-aligned representation of a single quad vertex.
// Matches the WGSL VertexInput struct layout of the sprite and presentation
// programs exactly.
// Size: 16 bytes (std430 aligned, no padding required).
type GPUQuadVertex struct {
	Position [2]float32 // offset 0: vertex position in quad-local space (8 bytes)
	TexCoord [2]float32 // offset 8: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUQuadVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUQuadVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUQuadVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUQuadVertex) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoord[1]))
	return buf
}

// UnitQuadVertices returns the four vertices of the shared unit quad, centered
// on the origin and spanning -0.5 to 0.5 on both axes. UVs map the top of the
// source image (v = 0) to the top of the quad in a Y-up world, so sprites
// sample upright without a flip.
//
// Returns:
//   - []GPUQuadVertex: the four unit quad vertices in CCW order
func UnitQuadVertices() []GPUQuadVertex {
	return []GPUQuadVertex{
		{Position: [2]float32{-0.5, -0.5}, TexCoord: [2]float32{0.0, 1.0}},
		{Position: [2]float32{0.5, -0.5}, TexCoord: [2]float32{1.0, 1.0}},
		{Position: [2]float32{0.5, 0.5}, TexCoord: [2]float32{1.0, 0.0}},
		{Position: [2]float32{-0.5, 0.5}, TexCoord: [2]float32{0.0, 0.0}},
	}
}

// UnitQuadIndices returns the index data for the shared unit quad as two CCW triangles.
//
// Returns:
//   - []uint32: the six quad indices
func UnitQuadIndices() []uint32 {
	return []uint32{0, 1, 2, 0, 2, 3}
}
