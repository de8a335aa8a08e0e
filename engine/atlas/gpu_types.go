package atlas

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// Binding indices for the atlas's two bind groups. The data group (group 1 in
// the instanced sprite program) holds the per-sprite storage buffer and the
// region table; the texture group (group 2) holds the atlas texture and sampler.
const (
	SpriteBufferBinding = 0
	RegionBufferBinding = 1

	TextureBinding = 0
	SamplerBinding = 1
)

// SpriteStride is the byte stride of one per-sprite record in the sprite
// storage buffer. Must match both the WGSL SpriteData struct and the size of
// the CPU-side sprite record type; the batch asserts the latter at construction.
const SpriteStride = 40

// RegionStride is the byte stride of one region record in the region storage buffer.
const RegionStride = 16

// GPURegion is the GPU-aligned representation of a normalized atlas region.
// Matches the WGSL RegionData struct layout exactly.
// Size: 16 bytes (std430 aligned, no padding required).
type GPURegion struct {
	Start [2]float32 // offset 0: normalized top-left corner (8 bytes)
	Size  [2]float32 // offset 8: normalized dimensions (8 bytes)
}

// ByteSize returns the size of the GPURegion struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPURegion) ByteSize() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPURegion struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPURegion) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Start[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Start[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Size[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Size[1]))
	return buf
}

// DataBindGroupLayout returns the bind group layout descriptor for the atlas's
// data group: the per-sprite storage buffer at binding 0 and the region table
// at binding 1, both read-only storage visible to the vertex stage.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the data group layout descriptor
func DataBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Atlas Data",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    SpriteBufferBinding,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: SpriteStride,
				},
			},
			{
				Binding:    RegionBufferBinding,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: RegionStride,
				},
			},
		},
	}
}

// TextureBindGroupLayout returns the bind group layout descriptor for the
// atlas's texture group: the atlas texture at binding 0 and its sampler at
// binding 1, visible to the fragment stage.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the texture group layout descriptor
func TextureBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Atlas Texture",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    TextureBinding,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    SamplerBinding,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}
