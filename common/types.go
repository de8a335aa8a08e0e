// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"

	// x/image registrations widen the set of decodable atlas formats beyond
	// the stdlib png/jpeg pair.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// This is primarily used in the BindGroupProvider to stage texture data before creating the GPU texture and bind group.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the base mip level. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
	// GenerateMipmaps requests a full mip chain. Levels below the base are
	// computed CPU-side with BuildMipChain and uploaded individually, since
	// WebGPU has no driver-side mipmap generation.
	GenerateMipmaps bool
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// This is primarily used in the BindGroupProvider to stage sampler data before creating the GPU sampler and bind group.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// DecodeImageFile loads and decodes an encoded image file to raw RGBA pixel
// data at 8 bits per channel. Supported formats are whatever decoders are
// registered with the image package (png, jpeg, bmp, tiff, webp).
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - path: filesystem path to the encoded image
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - uint32: image width in pixels
//   - uint32: image height in pixels
//   - error: error if the file is missing or undecodable
func DecodeImageFile(path string) ([]byte, uint32, uint32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode image file %s: %w", path, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	return rgba.Pix, uint32(width), uint32(height), nil
}

// MipLevelCount returns the number of mip levels for a texture of the given
// dimensions, down to and including the 1x1 level.
//
// Parameters:
//   - width: base level width in pixels
//   - height: base level height in pixels
//
// Returns:
//   - uint32: the mip level count (at least 1)
func MipLevelCount(width, height uint32) uint32 {
	levels := uint32(1)
	for width > 1 || height > 1 {
		width = max(width/2, 1)
		height = max(height/2, 1)
		levels++
	}
	return levels
}

// BuildMipChain computes the full mip chain for RGBA pixel data using a 2x2
// box filter. The returned slice starts with the base level pixels as given
// and ends with the 1x1 level. Each level halves both dimensions (clamped to
// a minimum of 1).
//
// Parameters:
//   - pixels: base level RGBA pixel data (4 bytes per pixel)
//   - width: base level width in pixels
//   - height: base level height in pixels
//
// Returns:
//   - [][]byte: pixel data per mip level, base level first
func BuildMipChain(pixels []byte, width, height uint32) [][]byte {
	chain := [][]byte{pixels}
	srcW, srcH := width, height
	src := pixels

	for srcW > 1 || srcH > 1 {
		dstW := max(srcW/2, 1)
		dstH := max(srcH/2, 1)
		dst := make([]byte, dstW*dstH*4)

		for y := uint32(0); y < dstH; y++ {
			sy0 := min(y*2, srcH-1)
			sy1 := min(y*2+1, srcH-1)
			for x := uint32(0); x < dstW; x++ {
				sx0 := min(x*2, srcW-1)
				sx1 := min(x*2+1, srcW-1)
				for c := uint32(0); c < 4; c++ {
					sum := uint32(src[(sy0*srcW+sx0)*4+c]) +
						uint32(src[(sy0*srcW+sx1)*4+c]) +
						uint32(src[(sy1*srcW+sx0)*4+c]) +
						uint32(src[(sy1*srcW+sx1)*4+c])
					dst[(y*dstW+x)*4+c] = byte(sum / 4)
				}
			}
		}

		chain = append(chain, dst)
		src, srcW, srcH = dst, dstW, dstH
	}

	return chain
}
