package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/bind_group_provider"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	label    string
	provider bind_group_provider.BindGroupProvider
}

// Mesh wraps the GPU vertex and index buffers for a piece of geometry. Every
// sprite draw shares the same unit quad mesh; per-sprite placement happens in
// the vertex shader, never by re-uploading geometry.
type Mesh interface {
	// Label returns the debug label for this mesh.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Provider returns the BindGroupProvider holding the mesh's vertex and index buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh geometry provider
	Provider() bind_group_provider.BindGroupProvider

	// Release releases the mesh's GPU buffers.
	Release()
}

var _ Mesh = &mesh{}

// NewUnitQuad creates the shared unit quad mesh and uploads its vertex and
// index buffers to the GPU through the given Renderer.
//
// Parameters:
//   - r: the Renderer used to create and upload the GPU buffers
//
// Returns:
//   - Mesh: the unit quad mesh
//   - error: an error if buffer creation fails
func NewUnitQuad(r renderer.Renderer) (Mesh, error) {
	vertices := UnitQuadVertices()
	vertexData := make([]byte, 0, len(vertices)*vertices[0].Size())
	for i := range vertices {
		vertexData = append(vertexData, vertices[i].Marshal()...)
	}

	indices := UnitQuadIndices()
	indexData := make([]byte, 0, len(indices)*4)
	for _, idx := range indices {
		indexData = append(indexData,
			byte(idx), byte(idx>>8), byte(idx>>16), byte(idx>>24))
	}

	m := &mesh{
		label:    "Unit Quad",
		provider: bind_group_provider.NewBindGroupProvider("Unit Quad"),
	}
	if err := r.InitMeshBuffers(m.provider, vertexData, indexData, len(indices)); err != nil {
		return nil, fmt.Errorf("failed to create unit quad buffers: %w", err)
	}

	return m, nil
}

func (m *mesh) Label() string {
	return m.label
}

func (m *mesh) Provider() bind_group_provider.BindGroupProvider {
	return m.provider
}

func (m *mesh) Release() {
	m.provider.Release()
}
