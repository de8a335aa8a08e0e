package atlas

import "github.com/cogentcore/webgpu/wgpu"

// AtlasBuilderOption is a functional option applied to an atlas during construction via NewAtlas.
type AtlasBuilderOption func(*atlasImpl)

// WithFilterMode sets the mag and min filter mode for the atlas sampler.
// Defaults to nearest, which keeps pixel-art sprites crisp; use linear for
// smooth scaling.
//
// Parameters:
//   - mode: the filter mode (wgpu.FilterModeNearest or wgpu.FilterModeLinear)
//
// Returns:
//   - AtlasBuilderOption: a function that applies the filter mode to an atlas
func WithFilterMode(mode wgpu.FilterMode) AtlasBuilderOption {
	return func(a *atlasImpl) {
		a.filterMode = mode
	}
}

// WithMipmaps requests a full mip chain for the atlas texture, generated
// CPU-side at creation. Useful when sprites render far below their native
// size; pointless for pixel art drawn at integer scales.
//
// Parameters:
//   - enabled: true to generate mipmaps
//
// Returns:
//   - AtlasBuilderOption: a function that applies the mipmap setting to an atlas
func WithMipmaps(enabled bool) AtlasBuilderOption {
	return func(a *atlasImpl) {
		a.generateMipmaps = enabled
	}
}

// WithInitialSpriteCapacity sets the initial capacity of the per-sprite
// storage buffer, in sprite records. Defaults to DefaultSpriteCapacity.
// The buffer still grows on demand past this; a good initial value just
// avoids early-frame reallocations.
//
// Parameters:
//   - capacity: the initial sprite capacity
//
// Returns:
//   - AtlasBuilderOption: a function that applies the initial capacity to an atlas
func WithInitialSpriteCapacity(capacity int) AtlasBuilderOption {
	return func(a *atlasImpl) {
		if capacity > 0 {
			a.initialCapacity = capacity
		}
	}
}
