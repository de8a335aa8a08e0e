package atlas

import "fmt"

// RegionDescriptor identifies a rectangular sub-region of an atlas image in
// pixel coordinates, measured from the image's top-left corner.
type RegionDescriptor struct {
	// X and Y are the pixel offsets of the region's top-left corner.
	X, Y uint32
	// Width and Height are the region's dimensions in pixels.
	Width, Height uint32
}

// Region is a normalized atlas sub-region in UV space. Start and size are
// fractions of the full texture dimensions, so region lookups in the shader
// reduce to a multiply-add on the quad's base UV.
type Region struct {
	// StartU and StartV are the normalized top-left corner of the region.
	StartU, StartV float32
	// SizeU and SizeV are the normalized dimensions of the region.
	SizeU, SizeV float32
}

// NormalizeRegion converts a pixel-space region descriptor into normalized UV
// space by dividing each component by the texture dimension on its axis.
// Descriptors extending past the texture bounds are rejected rather than
// silently sampling out of range.
//
// Parameters:
//   - desc: the pixel-space region descriptor
//   - texWidth, texHeight: the atlas texture dimensions in pixels
//
// Returns:
//   - Region: the normalized region
//   - error: an error if the descriptor falls outside the texture bounds
func NormalizeRegion(desc RegionDescriptor, texWidth, texHeight uint32) (Region, error) {
	if texWidth == 0 || texHeight == 0 {
		return Region{}, fmt.Errorf("texture dimensions must be non-zero, got %dx%d", texWidth, texHeight)
	}
	// Compared without adding so offsets near the uint32 ceiling cannot wrap
	// past the bounds check.
	if desc.X > texWidth || desc.Width > texWidth-desc.X ||
		desc.Y > texHeight || desc.Height > texHeight-desc.Y {
		return Region{}, fmt.Errorf(
			"region (%d,%d %dx%d) exceeds texture bounds %dx%d",
			desc.X, desc.Y, desc.Width, desc.Height, texWidth, texHeight,
		)
	}
	return Region{
		StartU: float32(desc.X) / float32(texWidth),
		StartV: float32(desc.Y) / float32(texHeight),
		SizeU:  float32(desc.Width) / float32(texWidth),
		SizeV:  float32(desc.Height) / float32(texHeight),
	}, nil
}
