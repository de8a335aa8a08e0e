package shader

import "testing"

func TestParseEntryPoint(t *testing.T) {
	source := `
struct VertexOutput {
	@builtin(position) position: vec4<f32>,
};

@vertex
fn vs_main(@location(0) pos: vec2<f32>) -> VertexOutput {
	var out: VertexOutput;
	return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
	return vec4<f32>(1.0);
}
`

	if got := parseEntryPoint(source, ShaderTypeVertex); got != "vs_main" {
		t.Errorf("vertex entry point = %q, want %q", got, "vs_main")
	}
	if got := parseEntryPoint(source, ShaderTypeFragment); got != "fs_main" {
		t.Errorf("fragment entry point = %q, want %q", got, "fs_main")
	}
}

func TestParseEntryPointMissingStage(t *testing.T) {
	vertexOnly := "@vertex\nfn only_vertex() {}"
	if got := parseEntryPoint(vertexOnly, ShaderTypeFragment); got != "" {
		t.Errorf("fragment entry point = %q, want empty", got)
	}
}

func TestEmbeddedSourcesDeclareBothStages(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"present", PresentSource},
		{"sprite", SpriteSource},
		{"sprite_instanced", SpriteInstancedSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if parseEntryPoint(tt.source, ShaderTypeVertex) == "" {
				t.Error("no vertex entry point found")
			}
			if parseEntryPoint(tt.source, ShaderTypeFragment) == "" {
				t.Error("no fragment entry point found")
			}
		})
	}
}

func TestNewShaderParsesEntryPoint(t *testing.T) {
	s := NewShader("sprite_vs", ShaderTypeVertex, SpriteSource)
	if s.Key() != "sprite_vs" {
		t.Errorf("key = %q, want %q", s.Key(), "sprite_vs")
	}
	if s.EntryPoint() == "" {
		t.Error("entry point is empty")
	}
	if s.Module() == nil || s.Module().WGSLDescriptor.Code != SpriteSource {
		t.Error("module descriptor does not carry the shader source")
	}
	if s.ShaderType() != ShaderTypeVertex {
		t.Errorf("shader type = %v, want vertex", s.ShaderType())
	}
}

func TestNewShaderPanicsOnWrongStage(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a source with no entry point for the stage")
		}
	}()
	NewShader("bad", ShaderTypeFragment, "@vertex\nfn vs_main() {}")
}
