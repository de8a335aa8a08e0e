package atlas

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultSpriteCapacity is the initial sprite capacity of an atlas's per-sprite
// storage buffer, in sprite records. The buffer grows on demand and never shrinks.
const DefaultSpriteCapacity = 256

// atlasCount is an atomic counter used to generate unique bind group provider names for each atlas instance.
var atlasCount atomic.Uint64

type atlasImpl struct {
	mu *sync.Mutex

	label  string
	width  uint32
	height uint32

	regions []Region

	renderer        renderer.Renderer
	dataProvider    bind_group_provider.BindGroupProvider
	textureProvider bind_group_provider.BindGroupProvider

	// Pre-creation config collected from builder options
	filterMode      wgpu.FilterMode
	generateMipmaps bool
	initialCapacity int
}

// Atlas is a texture atlas: one GPU texture holding many sprite images, a
// table of normalized sub-regions into it, and the per-sprite storage buffer
// consumed by the instanced sprite program. Sprites drawn against the same
// atlas batch into a single instanced draw call.
type Atlas interface {
	// Label returns the debug label for this atlas.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Width returns the atlas texture width in pixels.
	//
	// Returns:
	//   - uint32: the texture width
	Width() uint32

	// Height returns the atlas texture height in pixels.
	//
	// Returns:
	//   - uint32: the texture height
	Height() uint32

	// Region returns the normalized region at the given index.
	//
	// Parameters:
	//   - index: the region index
	//
	// Returns:
	//   - Region: the normalized region
	//   - error: an error if the index is out of range
	Region(index int) (Region, error)

	// RegionCount returns the number of regions in the atlas.
	//
	// Returns:
	//   - int: the region count
	RegionCount() int

	// SpriteCapacity returns the current capacity of the per-sprite storage
	// buffer, in sprite records.
	//
	// Returns:
	//   - int: the sprite capacity
	SpriteCapacity() int

	// EnsureSpriteCapacity grows the per-sprite storage buffer to hold at
	// least count sprite records. The capacity only ever grows; a request at
	// or below the current capacity is a no-op. On growth the data bind group
	// is rebuilt and the retired buffer is freed after the frame's submission.
	//
	// Parameters:
	//   - count: the required capacity in sprite records
	//
	// Returns:
	//   - error: an error if the replacement buffer or bind group could not be created
	EnsureSpriteCapacity(count int) error

	// DataProvider returns the provider holding the per-sprite storage buffer
	// and region table (group 1 of the instanced sprite program).
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the data bind group provider
	DataProvider() bind_group_provider.BindGroupProvider

	// TextureProvider returns the provider holding the atlas texture and
	// sampler (group 2 of both sprite programs).
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the texture bind group provider
	TextureProvider() bind_group_provider.BindGroupProvider

	// Release releases all GPU resources held by the atlas.
	Release()
}

var _ Atlas = &atlasImpl{}

// NewAtlas creates a texture atlas from an image file and a set of pixel-space
// region descriptors. The image is decoded to RGBA, uploaded as a GPU texture
// (with a CPU-generated mip chain when requested), the regions are normalized
// and uploaded as a storage buffer sized exactly to the region count, and the
// per-sprite storage buffer is pre-sized to the configured initial capacity.
// A descriptor extending past the image bounds fails the whole creation.
//
// Parameters:
//   - r: the Renderer used to create GPU resources
//   - imagePath: path to the atlas image (png, jpeg, bmp, tiff, or webp)
//   - descriptors: the pixel-space sprite regions within the image
//   - options: functional options to configure the atlas
//
// Returns:
//   - Atlas: the created atlas
//   - error: an error if decoding, normalization, or GPU resource creation fails
func NewAtlas(r renderer.Renderer, imagePath string, descriptors []RegionDescriptor, options ...AtlasBuilderOption) (Atlas, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("atlas requires at least one region descriptor")
	}

	label := "atlas_" + strconv.FormatUint(atlasCount.Load(), 10)
	a := &atlasImpl{
		mu:              &sync.Mutex{},
		label:           label,
		renderer:        r,
		dataProvider:    bind_group_provider.NewBindGroupProvider(label + "_data"),
		textureProvider: bind_group_provider.NewBindGroupProvider(label + "_texture"),
		filterMode:      wgpu.FilterModeNearest,
		initialCapacity: DefaultSpriteCapacity,
	}
	for _, opt := range options {
		opt(a)
	}
	if a.initialCapacity < 1 {
		a.initialCapacity = 1
	}

	pixels, width, height, err := common.DecodeImageFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load atlas image %q: %w", imagePath, err)
	}
	a.width = width
	a.height = height

	a.regions = make([]Region, len(descriptors))
	for i, desc := range descriptors {
		region, normErr := NormalizeRegion(desc, width, height)
		if normErr != nil {
			return nil, fmt.Errorf("region %d: %w", i, normErr)
		}
		a.regions[i] = region
	}

	if err := r.InitTextureView(a.textureProvider, TextureBinding, common.TextureStagingData{
		Pixels:          pixels,
		Width:           width,
		Height:          height,
		GenerateMipmaps: a.generateMipmaps,
	}); err != nil {
		a.Release()
		return nil, fmt.Errorf("failed to create atlas texture: %w", err)
	}

	mipmapFilter := wgpu.MipmapFilterModeNearest
	if a.generateMipmaps && a.filterMode == wgpu.FilterModeLinear {
		mipmapFilter = wgpu.MipmapFilterModeLinear
	}
	if err := r.InitSampler(a.textureProvider, SamplerBinding, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    a.filterMode,
		MinFilter:    a.filterMode,
		MipmapFilter: mipmapFilter,
	}); err != nil {
		a.Release()
		return nil, fmt.Errorf("failed to create atlas sampler: %w", err)
	}

	if err := r.InitBindGroup(a.textureProvider, TextureBindGroupLayout(), nil, nil); err != nil {
		a.Release()
		return nil, fmt.Errorf("failed to create atlas texture bind group: %w", err)
	}

	if err := r.InitBindGroup(a.dataProvider, DataBindGroupLayout(), nil, map[int]uint64{
		SpriteBufferBinding: uint64(a.initialCapacity) * SpriteStride,
		RegionBufferBinding: uint64(len(a.regions)) * RegionStride,
	}); err != nil {
		a.Release()
		return nil, fmt.Errorf("failed to create atlas data bind group: %w", err)
	}

	// The region table is immutable after creation, uploaded once.
	regionData := make([]byte, 0, len(a.regions)*RegionStride)
	for _, region := range a.regions {
		g := GPURegion{
			Start: [2]float32{region.StartU, region.StartV},
			Size:  [2]float32{region.SizeU, region.SizeV},
		}
		regionData = append(regionData, g.Marshal()...)
	}
	r.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: a.dataProvider,
			Binding:  RegionBufferBinding,
			Data:     regionData,
		},
	})

	atlasCount.Add(1)
	return a, nil
}

func (a *atlasImpl) Label() string {
	return a.label
}

func (a *atlasImpl) Width() uint32 {
	return a.width
}

func (a *atlasImpl) Height() uint32 {
	return a.height
}

func (a *atlasImpl) Region(index int) (Region, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.regions) {
		return Region{}, fmt.Errorf("region index %d out of range [0,%d)", index, len(a.regions))
	}
	return a.regions[index], nil
}

func (a *atlasImpl) RegionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.regions)
}

func (a *atlasImpl) SpriteCapacity() int {
	return int(a.dataProvider.BufferCapacity(SpriteBufferBinding) / SpriteStride)
}

func (a *atlasImpl) EnsureSpriteCapacity(count int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	required := uint64(count) * SpriteStride
	grown, err := a.renderer.EnsureBufferCapacity(
		a.dataProvider,
		SpriteBufferBinding,
		required,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst,
	)
	if err != nil {
		return err
	}
	if !grown {
		return nil
	}

	// Rebuild the data bind group against the grown sprite buffer. The region
	// buffer is reused as-is.
	if err := a.renderer.InitBindGroup(a.dataProvider, DataBindGroupLayout(), nil, nil); err != nil {
		return fmt.Errorf("failed to rebuild atlas data bind group after growth: %w", err)
	}
	return nil
}

func (a *atlasImpl) DataProvider() bind_group_provider.BindGroupProvider {
	return a.dataProvider
}

func (a *atlasImpl) TextureProvider() bind_group_provider.BindGroupProvider {
	return a.textureProvider
}

func (a *atlasImpl) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dataProvider.Release()
	a.textureProvider.Release()
}
