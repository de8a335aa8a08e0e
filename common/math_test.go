package common

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

// TestOrthoCornerMapping verifies that the viewport corners land on the clip
// space corners and the center stays at the origin.
func TestOrthoCornerMapping(t *testing.T) {
	m := make([]float32, 16)
	Ortho(m, 800, 600, 0, 100)

	tests := []struct {
		name         string
		x, y         float32
		wantX, wantY float32
	}{
		{"center", 0, 0, 0, 0},
		{"right edge", 400, 0, 1, 0},
		{"left edge", -400, 0, -1, 0},
		{"top edge", 0, 300, 0, 1},
		{"bottom edge", 0, -300, 0, -1},
		{"top-right corner", 400, 300, 1, 1},
		{"bottom-left corner", -400, -300, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gx, gy, _, gw := TransformPoint(m, tt.x, tt.y, 0)
			if !approxEqual(gx, tt.wantX) || !approxEqual(gy, tt.wantY) {
				t.Errorf("(%v,%v) mapped to (%v,%v), want (%v,%v)", tt.x, tt.y, gx, gy, tt.wantX, tt.wantY)
			}
			if !approxEqual(gw, 1) {
				t.Errorf("w = %v, want 1", gw)
			}
		})
	}
}

// TestOrthoDepthMapping verifies that z in [zNear, zFar] maps to clip depth
// [0, 1] with higher z landing at smaller depth, so higher z-indexes win a
// less-than depth test.
func TestOrthoDepthMapping(t *testing.T) {
	m := make([]float32, 16)
	Ortho(m, 800, 600, 0, 100)

	_, _, nearDepth, _ := TransformPoint(m, 0, 0, 0)
	_, _, farDepth, _ := TransformPoint(m, 0, 0, 100)
	_, _, midDepth, _ := TransformPoint(m, 0, 0, 50)

	if !approxEqual(nearDepth, 1) {
		t.Errorf("z=zNear mapped to depth %v, want 1", nearDepth)
	}
	if !approxEqual(farDepth, 0) {
		t.Errorf("z=zFar mapped to depth %v, want 0", farDepth)
	}
	if midDepth <= farDepth || midDepth >= nearDepth {
		t.Errorf("z=50 mapped to depth %v, want strictly between %v and %v", midDepth, farDepth, nearDepth)
	}
}

// TestOrthoUnitPerPixel verifies the one-world-unit-per-pixel property: moving
// one unit in world space moves exactly 2/size in clip space.
func TestOrthoUnitPerPixel(t *testing.T) {
	m := make([]float32, 16)
	Ortho(m, 1920, 1080, 0, 10)

	x0, y0, _, _ := TransformPoint(m, 0, 0, 0)
	x1, y1, _, _ := TransformPoint(m, 1, 1, 0)

	if !approxEqual(x1-x0, 2.0/1920) {
		t.Errorf("one unit along X moved %v in clip space, want %v", x1-x0, 2.0/1920)
	}
	if !approxEqual(y1-y0, 2.0/1080) {
		t.Errorf("one unit along Y moved %v in clip space, want %v", y1-y0, 2.0/1080)
	}
}

// TestBuildSpriteMatrix verifies the translate * rotateZ * scale composition
// by pushing unit quad corners through the matrix.
func TestBuildSpriteMatrix(t *testing.T) {
	tests := []struct {
		name         string
		x, y, z      float32
		rotation     float32
		sx, sy       float32
		inX, inY     float32
		wantX, wantY float32
	}{
		{
			name: "identity passes corner through",
			sx:   1, sy: 1,
			inX: 0.5, inY: 0.5,
			wantX: 0.5, wantY: 0.5,
		},
		{
			name: "scale stretches the quad",
			sx:   32, sy: 16,
			inX: 0.5, inY: -0.5,
			wantX: 16, wantY: -8,
		},
		{
			name: "translation moves the center",
			x:    100, y: -50, sx: 1, sy: 1,
			inX: 0, inY: 0,
			wantX: 100, wantY: -50,
		},
		{
			name:     "quarter turn counter-clockwise",
			rotation: math.Pi / 2,
			sx:       1, sy: 1,
			inX: 0.5, inY: 0,
			wantX: 0, wantY: 0.5,
		},
		{
			name: "scale then rotate then translate",
			x:    10, y: 20,
			rotation: math.Pi / 2,
			sx:       4, sy: 2,
			inX: 0.5, inY: 0.5,
			// scale: (2, 1), rotate 90ccw: (-1, 2), translate: (9, 22)
			wantX: 9, wantY: 22,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make([]float32, 16)
			BuildSpriteMatrix(m, tt.x, tt.y, tt.z, tt.rotation, tt.sx, tt.sy)
			gx, gy, gz, _ := TransformPoint(m, tt.inX, tt.inY, 0)
			if !approxEqual(gx, tt.wantX) || !approxEqual(gy, tt.wantY) {
				t.Errorf("corner mapped to (%v,%v), want (%v,%v)", gx, gy, tt.wantX, tt.wantY)
			}
			if !approxEqual(gz, tt.z) {
				t.Errorf("depth = %v, want %v", gz, tt.z)
			}
		})
	}
}

func TestSliceToBytes(t *testing.T) {
	floats := []float32{1, 2, 3}
	b := SliceToBytes(floats)
	if len(b) != 12 {
		t.Errorf("byte view of 3 float32s has %d bytes, want 12", len(b))
	}
	if SliceToBytes([]float32(nil)) != nil {
		t.Error("empty slice should yield a nil byte view")
	}

	v := struct{ A, B uint32 }{1, 2}
	if got := len(StructToBytes(&v)); got != 8 {
		t.Errorf("byte view of 8-byte struct has %d bytes, want 8", got)
	}
}

// TestMul4 checks identity behavior and that composing via Mul4 matches
// building the combined transform directly.
func TestMul4(t *testing.T) {
	ident := make([]float32, 16)
	Identity(ident)

	sprite := make([]float32, 16)
	BuildSpriteMatrix(sprite, 3, 4, 0, 0.7, 2, 5)

	out := make([]float32, 16)
	Mul4(out, ident, sprite)
	for i := range 16 {
		if !approxEqual(out[i], sprite[i]) {
			t.Fatalf("identity * m differs at %d: got %v, want %v", i, out[i], sprite[i])
		}
	}

	// Projecting a transformed point directly should match projecting through
	// the premultiplied matrix.
	proj := make([]float32, 16)
	Ortho(proj, 640, 480, 0, 10)
	combined := make([]float32, 16)
	Mul4(combined, proj, sprite)

	wx, wy, wz, _ := TransformPoint(sprite, 0.5, -0.5, 0)
	directX, directY, directZ, _ := TransformPoint(proj, wx, wy, wz)
	combX, combY, combZ, _ := TransformPoint(combined, 0.5, -0.5, 0)

	if !approxEqual(directX, combX) || !approxEqual(directY, combY) || !approxEqual(directZ, combZ) {
		t.Errorf("combined transform (%v,%v,%v) differs from sequential (%v,%v,%v)",
			combX, combY, combZ, directX, directY, directZ)
	}
}
