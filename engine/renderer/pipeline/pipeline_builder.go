package pipeline

import (
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option applied to a pipeline during construction via NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex shader stage for this pipeline.
//
// Parameters:
//   - s: the vertex Shader
//
// Returns:
//   - PipelineBuilderOption: a function that applies the vertex shader to a pipeline
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment shader stage for this pipeline.
//
// Parameters:
//   - s: the fragment Shader
//
// Returns:
//   - PipelineBuilderOption: a function that applies the fragment shader to a pipeline
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithBindGroupLayouts sets the explicit bind group layout descriptors for this
// pipeline, keyed by group index. These declare the pipeline's GPU binding
// contract and must match the structs declared in the WGSL source.
//
// Parameters:
//   - layouts: bind group layout descriptors keyed by group index
//
// Returns:
//   - PipelineBuilderOption: a function that applies the layouts to a pipeline
func WithBindGroupLayouts(layouts map[int]wgpu.BindGroupLayoutDescriptor) PipelineBuilderOption {
	return func(p *pipeline) {
		p.bindGroupLayouts = layouts
	}
}

// WithVertexLayouts sets the vertex buffer layouts consumed by the vertex stage.
//
// Parameters:
//   - layouts: the vertex buffer layouts
//
// Returns:
//   - PipelineBuilderOption: a function that applies the vertex layouts to a pipeline
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayouts = layouts
	}
}

// WithTarget selects the render target the pipeline is built against.
// TargetOffscreen (the default) renders into the internal render target;
// TargetSurface renders into the swapchain directly with no depth attachment.
//
// Parameters:
//   - target: the PipelineTarget to build against
//
// Returns:
//   - PipelineBuilderOption: a function that applies the target to a pipeline
func WithTarget(target PipelineTarget) PipelineBuilderOption {
	return func(p *pipeline) {
		p.target = target
		if target == TargetSurface {
			// Surface passes have no depth attachment.
			p.depthTestEnabled = false
			p.depthWriteEnabled = false
		}
	}
}

// WithDepthTest enables or disables depth testing for this pipeline.
//
// Parameters:
//   - enabled: true to enable depth testing
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth test setting to a pipeline
func WithDepthTest(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWrite enables or disables depth writes for this pipeline.
//
// Parameters:
//   - enabled: true to enable depth writes
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth write setting to a pipeline
func WithDepthWrite(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithBlend enables or disables alpha blending for this pipeline.
//
// Parameters:
//   - enabled: true to enable blending with the pipeline's blend state
//
// Returns:
//   - PipelineBuilderOption: a function that applies the blend setting to a pipeline
func WithBlend(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithBlendState replaces the pipeline's blend state. Only used when blending is enabled.
//
// Parameters:
//   - state: the blend state to use
//
// Returns:
//   - PipelineBuilderOption: a function that applies the blend state to a pipeline
func WithBlendState(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = state
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode (e.g., wgpu.CullModeNone, wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that applies the cull mode to a pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology for this pipeline.
//
// Parameters:
//   - topology: the primitive topology (e.g., wgpu.PrimitiveTopologyTriangleList)
//
// Returns:
//   - PipelineBuilderOption: a function that applies the topology to a pipeline
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}
