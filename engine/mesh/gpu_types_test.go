package mesh

import "testing"

func TestUnitQuadGeometry(t *testing.T) {
	verts := UnitQuadVertices()
	if len(verts) != 4 {
		t.Fatalf("unit quad has %d vertices, want 4", len(verts))
	}

	for i, v := range verts {
		if v.Position[0] != -0.5 && v.Position[0] != 0.5 {
			t.Errorf("vertex %d x = %v, want ±0.5", i, v.Position[0])
		}
		if v.Position[1] != -0.5 && v.Position[1] != 0.5 {
			t.Errorf("vertex %d y = %v, want ±0.5", i, v.Position[1])
		}
	}
}

// TestUnitQuadUVOrientation checks that the top of the quad in a Y-up world
// samples the top of the source image (v = 0), so sprites render upright.
func TestUnitQuadUVOrientation(t *testing.T) {
	for i, v := range UnitQuadVertices() {
		wantV := float32(1)
		if v.Position[1] > 0 {
			wantV = 0
		}
		if v.TexCoord[1] != wantV {
			t.Errorf("vertex %d at y=%v has v=%v, want %v", i, v.Position[1], v.TexCoord[1], wantV)
		}
		wantU := float32(1)
		if v.Position[0] < 0 {
			wantU = 0
		}
		if v.TexCoord[0] != wantU {
			t.Errorf("vertex %d at x=%v has u=%v, want %v", i, v.Position[0], v.TexCoord[0], wantU)
		}
	}
}

func TestUnitQuadIndices(t *testing.T) {
	indices := UnitQuadIndices()
	if len(indices) != 6 {
		t.Fatalf("unit quad has %d indices, want 6", len(indices))
	}
	for i, idx := range indices {
		if idx > 3 {
			t.Errorf("index %d = %d, out of range for 4 vertices", i, idx)
		}
	}
}

func TestGPUQuadVertexSize(t *testing.T) {
	if got := (&GPUQuadVertex{}).Size(); got != 16 {
		t.Errorf("GPUQuadVertex size = %d, want 16", got)
	}
	v := GPUQuadVertex{Position: [2]float32{-0.5, 0.5}, TexCoord: [2]float32{0, 1}}
	if len(v.Marshal()) != 16 {
		t.Errorf("marshaled length = %d, want 16", len(v.Marshal()))
	}
}
