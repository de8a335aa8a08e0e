package common

import (
	"math"
	"unsafe"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Ortho creates an orthographic projection matrix for a viewport of the given
// pixel dimensions with the origin centered and the Y axis increasing upward.
// World X spans [-width/2, width/2] and world Y spans [-height/2, height/2].
// World Z in [zNear, zFar] maps to WebGPU clip depth [0, 1] such that higher
// Z values land at smaller depth, so with a CompareFunctionLess depth test a
// sprite at a higher z-index draws in front of one at a lower z-index.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - width: viewport width in world units (typically pixels)
//   - height: viewport height in world units (typically pixels)
//   - zNear: lowest representable z-index
//   - zFar: highest representable z-index (must be > zNear)
func Ortho(out []float32, width, height, zNear, zFar float32) {
	Identity(out)
	out[0] = 2.0 / width
	out[5] = 2.0 / height
	out[10] = -1.0 / (zFar - zNear)
	out[14] = zFar / (zFar - zNear)
}

// BuildSpriteMatrix constructs a 4x4 model matrix for a quad sprite from a 2D
// position, a counter-clockwise rotation about Z, and a 2D scale. Composition
// order is translate * rotateZ * scale, so the unit quad is scaled to the
// sprite's size, rotated, then moved into place. The column-major result will
// place the sprite at depth z.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - x, y: translation in world space
//   - z: depth coordinate (the sprite's z-index)
//   - rotation: rotation angle in radians, counter-clockwise about Z
//   - scaleX, scaleY: scale factors along each axis
func BuildSpriteMatrix(out []float32, x, y, z, rotation, scaleX, scaleY float32) {
	c := float32(math.Cos(float64(rotation)))
	s := float32(math.Sin(float64(rotation)))

	out[0] = c * scaleX
	out[1] = s * scaleX
	out[2] = 0
	out[3] = 0

	out[4] = -s * scaleY
	out[5] = c * scaleY
	out[6] = 0
	out[7] = 0

	out[8] = 0
	out[9] = 0
	out[10] = 1
	out[11] = 0

	out[12] = x
	out[13] = y
	out[14] = z
	out[15] = 1
}

// TransformPoint applies a 4x4 column-major matrix to a point (x, y, z, 1)
// and returns the transformed x, y, z and w components.
//
// Parameters:
//   - m: the matrix to apply (16 elements, column-major)
//   - x, y, z: the point to transform
//
// Returns:
//   - float32: transformed x
//   - float32: transformed y
//   - float32: transformed z
//   - float32: transformed w
func TransformPoint(m []float32, x, y, z float32) (float32, float32, float32, float32) {
	tx := m[0]*x + m[4]*y + m[8]*z + m[12]
	ty := m[1]*x + m[5]*y + m[9]*z + m[13]
	tz := m[2]*x + m[6]*y + m[10]*z + m[14]
	tw := m[3]*x + m[7]*y + m[11]*z + m[15]
	return tx, ty, tz, tw
}
