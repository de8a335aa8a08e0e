package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("sprite")

	if p.PipelineKey() != "sprite" {
		t.Errorf("key = %q, want %q", p.PipelineKey(), "sprite")
	}
	if p.Target() != TargetOffscreen {
		t.Error("default target is not offscreen")
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() {
		t.Error("offscreen pipelines default to depth test and write enabled")
	}
	if p.BlendEnabled() {
		t.Error("blending defaults to disabled")
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("topology = %v, want triangle list", p.Topology())
	}
}

func TestSurfaceTargetDisablesDepth(t *testing.T) {
	p := NewPipeline("present", WithTarget(TargetSurface))

	if p.Target() != TargetSurface {
		t.Error("target not set to surface")
	}
	if p.DepthTestEnabled() || p.DepthWriteEnabled() {
		t.Error("surface pipelines must not use the depth attachment")
	}
}

func TestPipelineOptions(t *testing.T) {
	layouts := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "Camera"},
		2: {Label: "Texture"},
	}
	p := NewPipeline("sprite_instanced",
		WithBindGroupLayouts(layouts),
		WithBlend(true),
		WithCullMode(wgpu.CullModeBack),
	)

	if !p.BlendEnabled() {
		t.Error("blend option not applied")
	}
	if p.CullMode() != wgpu.CullModeBack {
		t.Errorf("cull mode = %v, want back", p.CullMode())
	}
	got := p.BindGroupLayoutDescriptors()
	if len(got) != 2 || got[0].Label != "Camera" || got[2].Label != "Texture" {
		t.Errorf("bind group layouts = %+v, want the configured map", got)
	}
}
