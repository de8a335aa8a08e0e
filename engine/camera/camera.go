package camera

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/bind_group_provider"
)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

type cameraImpl struct {
	mu *sync.Mutex

	width  float32
	height float32
	zNear  float32
	zFar   float32

	projectionMatrix [16]float32
	dirty            bool

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera defines the interface for the 2D orthographic camera.
// The camera maps a world region centered on the origin, width x height units
// in size with Y up, onto the full surface. Sprite z-index selects depth within
// the zNear..zFar range; a higher z-index draws in front of a lower one.
type Camera interface {
	// Viewport returns the world-space width and height visible through the camera.
	//
	// Returns:
	//   - width, height: the visible world region in world units
	Viewport() (width, height float32)

	// ZRange returns the near and far bounds of the z-index depth range.
	//
	// Returns:
	//   - zNear, zFar: the depth range bounds
	ZRange() (zNear, zFar float32)

	// ProjectionMatrix returns the current 4x4 orthographic projection matrix
	// as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// BindGroupProvider returns the camera's bind group provider for GPU resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetViewport sets the visible world region and recomputes the projection matrix.
	// Typically called when the surface resizes so one world unit keeps mapping to one pixel.
	//
	// Parameters:
	//   - width, height: the visible world region in world units
	SetViewport(width, height float32)

	// SetZRange sets the z-index depth range and recomputes the projection matrix.
	// Sprites with z-index outside this range are clipped.
	//
	// Parameters:
	//   - zNear, zFar: the depth range bounds
	SetZRange(zNear, zFar float32)

	// StagedWrite returns the pending upload of the camera uniform when the
	// projection has changed since the last call, or false when the GPU copy
	// is already current.
	//
	// Returns:
	//   - bind_group_provider.BufferWrite: the staged camera uniform write
	//   - bool: true if an upload is needed
	StagedWrite() (bind_group_provider.BufferWrite, bool)

	// Release releases the camera's GPU resources.
	Release()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new 2D orthographic Camera with default settings
// (viewport 800x600, z range 0..100).
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		width:  800,
		height: 600,
		zNear:  0,
		zFar:   100,
		dirty:  true,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraCount.Load(), 10),
		),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrix()
	cameraCount.Add(1)
	return c
}

func (c *cameraImpl) Viewport() (width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) ZRange() (zNear, zFar float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zNear, c.zFar
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroupProvider
}

func (c *cameraImpl) SetViewport(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width <= 0 || height <= 0 {
		return
	}
	c.width = width
	c.height = height
	c.updateMatrix()
}

func (c *cameraImpl) SetZRange(zNear, zFar float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if zFar <= zNear {
		return
	}
	c.zNear = zNear
	c.zFar = zFar
	c.updateMatrix()
}

func (c *cameraImpl) StagedWrite() (bind_group_provider.BufferWrite, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return bind_group_provider.BufferWrite{}, false
	}
	c.dirty = false

	data := GPUCameraData{Projection: c.projectionMatrix}
	return bind_group_provider.BufferWrite{
		Provider: c.bindGroupProvider,
		Binding:  CameraDataBinding,
		Data:     data.Marshal(),
	}, true
}

func (c *cameraImpl) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindGroupProvider.Release()
}

// updateMatrix recomputes the orthographic projection. Caller must hold c.mu.
func (c *cameraImpl) updateMatrix() {
	out := make([]float32, 16)
	common.Ortho(out, c.width, c.height, c.zNear, c.zFar)
	copy(c.projectionMatrix[:], out)
	c.dirty = true
}
