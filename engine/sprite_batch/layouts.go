package sprite_batch

import (
	"github.com/Carmen-Shannon/oxy2d/engine/camera"
	"github.com/cogentcore/webgpu/wgpu"
)

// Pipeline cache keys for the three fixed programs registered by the batch.
const (
	// PipelineKeySpriteInstanced is the instanced sprite program: one draw per
	// batch, per-sprite records pulled from the storage buffer by instance index.
	PipelineKeySpriteInstanced = "sprite_instanced"

	// PipelineKeySprite is the single-sprite program: one draw per sprite with
	// a CPU-built model matrix in a dynamic-offset uniform slot.
	PipelineKeySprite = "sprite"

	// PipelineKeyPresent is the presentation blit that samples the offscreen
	// color target onto the swapchain.
	PipelineKeyPresent = "present"
)

// CameraBindGroupLayout returns the bind group layout descriptor for the
// camera group (group 0 of both sprite programs): one 64-byte projection
// uniform visible to the vertex stage.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the camera group layout descriptor
func CameraBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Camera",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    camera.CameraDataBinding,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 64,
				},
			},
		},
	}
}

// UniformBindGroupLayout returns the bind group layout descriptor for the
// single-sprite uniform arena (group 1 of the single-sprite program): one
// 96-byte uniform window with a dynamic offset selecting the active slot.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the uniform arena layout descriptor
func UniformBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Sprite Uniform",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    UniformBufferBinding,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   96,
				},
			},
		},
	}
}

// PresentBindGroupLayout returns the bind group layout descriptor for the
// presentation blit (group 0 of the present program): the offscreen color
// texture at binding 0 and its sampler at binding 1.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the present group layout descriptor
func PresentBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Present",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}

// QuadVertexLayout returns the vertex buffer layout for the shared unit quad:
// a 16-byte stride with position at shader location 0 and UV at location 1.
//
// Returns:
//   - wgpu.VertexBufferLayout: the quad vertex buffer layout
func QuadVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 16,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{
				Format:         wgpu.VertexFormatFloat32x2,
				Offset:         0,
				ShaderLocation: 0,
			},
			{
				Format:         wgpu.VertexFormatFloat32x2,
				Offset:         8,
				ShaderLocation: 1,
			},
		},
	}
}
