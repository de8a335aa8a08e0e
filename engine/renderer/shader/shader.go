package shader

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// PresentSource is the embedded WGSL source for the presentation blit program.
//
//go:embed assets/present.wgsl
var PresentSource string

// SpriteSource is the embedded WGSL source for the single-sprite program.
//
//go:embed assets/sprite.wgsl
var SpriteSource string

// SpriteInstancedSource is the embedded WGSL source for the instanced-sprite program.
//
//go:embed assets/sprite_instanced.wgsl
var SpriteInstancedSource string

// ShaderType identifies the pipeline stage a shader entry point belongs to.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
// It holds the persistent shader data required for pipeline creation.
type shader struct {
	key        string
	source     string
	shaderType ShaderType
	entryPoint string
	module     *wgpu.ShaderModuleDescriptor
}

// Shader defines the interface for one stage of an embedded WGSL program. It
// exposes the stage's unique key, source code, entry point name, and module
// descriptor needed for pipeline creation. The renderer ships three fixed
// programs (present, sprite, sprite_instanced); their bind group layouts are
// declared in code next to the GPU record types they bind, not parsed from
// the source.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint returns the entry point name for this shader, parsed from the
	// @vertex or @fragment function declaration in the source.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns the type of the shader (vertex or fragment).
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType
}

var _ Shader = &shader{}

// NewShader creates a new Shader stage from embedded WGSL source. The entry
// point for the requested stage is parsed from the source; a source that does
// not declare a function for that stage is a programming error and panics.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching, labels, and lookups
//   - shaderType: the stage this Shader represents (vertex or fragment)
//   - source: the WGSL source text
//
// Returns:
//   - Shader: a new Shader instance for the requested stage
func NewShader(key string, shaderType ShaderType, source string) Shader {
	if source == "" {
		panic(fmt.Sprintf("shader: %s must have non-empty source", key))
	}
	entry := parseEntryPoint(source, shaderType)
	if entry == "" {
		panic(fmt.Sprintf("shader: %s source has no entry point for the requested stage", key))
	}
	return &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
		entryPoint: entry,
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
	}
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}
