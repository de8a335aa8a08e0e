package sprite_batch

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/atlas"
	"github.com/Carmen-Shannon/oxy2d/engine/camera"
	"github.com/Carmen-Shannon/oxy2d/engine/mesh"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// defaultUniformSlots is the initial slot capacity of the single-sprite
// uniform arena. The arena grows on demand and never shrinks.
const defaultUniformSlots = 64

type spriteBatchImpl struct {
	mu *sync.Mutex

	r    renderer.Renderer
	cam  camera.Camera
	quad mesh.Mesh

	// Single-sprite uniform arena: one dynamic-offset uniform buffer carved
	// into 256-byte slots, reset every pass.
	uniformProvider bind_group_provider.BindGroupProvider
	usedSlots       int

	// Per-pass append cursors into each atlas's sprite buffer, in sprite
	// records. Queue writes all land before the frame's submission, so
	// batches drawn against the same atlas in one pass must occupy disjoint
	// buffer ranges; the cursor hands each batch its own slice.
	spriteCursors map[atlas.Atlas]int

	passActive  bool
	passSprites int

	// pendingResize holds surface dimensions requested while a pass was
	// open; applied at the start of the next pass.
	pendingResize *[2]int

	// encodePool manages a bounded set of reusable goroutines for the parallel
	// sprite record encoding of large batches.
	encodePool    worker.DynamicWorkerPool
	encodeWorkers int

	// Pre-creation config collected from builder options
	initialUniformSlots int
}

// SpriteBatch is the high-level 2D drawing facade. It owns the camera, the
// shared unit quad, the three fixed pipelines, and the single-sprite uniform
// arena, and drives the renderer's pass lifecycle.
//
// Frame flow: BeginPass → any number of DrawSprite / DrawSprites calls →
// EndPass → Present. Draw calls outside an open pass return an error.
type SpriteBatch interface {
	// Camera returns the batch's orthographic camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// BeginPass uploads the camera uniform if it changed, resets the uniform
	// arena, and opens the offscreen render pass.
	//
	// Returns:
	//   - error: an error if a pass is already open or the pass could not be started
	BeginPass() error

	// DrawSprite draws a single sprite from the atlas. The model matrix is
	// built CPU-side and written into one uniform arena slot; the draw is a
	// single non-instanced quad. Suited to one-off sprites; use DrawSprites
	// for anything drawn in bulk.
	//
	// Parameters:
	//   - a: the atlas supplying the texture and region table
	//   - sprite: the sprite to draw
	//
	// Returns:
	//   - error: an error if no pass is open or GPU resources could not be updated
	DrawSprite(a atlas.Atlas, sprite Sprite) error

	// DrawSprites draws a batch of sprites from the atlas in a single
	// instanced draw call. Records are encoded at the sprite stride (in
	// parallel for large batches), the atlas's sprite buffer is grown on
	// demand, and the batch uploads as one write appended after any earlier
	// batches drawn against the same atlas this pass. Instance identity is
	// array order only.
	//
	// Parameters:
	//   - a: the atlas supplying the texture, region table, and sprite buffer
	//   - sprites: the sprites to draw
	//
	// Returns:
	//   - error: an error if no pass is open or GPU resources could not be updated
	DrawSprites(a atlas.Atlas, sprites []Sprite) error

	// EndPass closes the offscreen render pass, encodes the presentation blit,
	// and submits the frame to the GPU.
	//
	// Returns:
	//   - error: an error if no pass is open or submission fails
	EndPass() error

	// Present displays the submitted frame and frees resources retired during it.
	// Must be called once per frame after EndPass.
	Present()

	// SpriteCount returns the number of sprites submitted since the pass was
	// last opened. After EndPass it reports the finished pass's total.
	//
	// Returns:
	//   - int: the sprite count
	SpriteCount() int

	// Resize requests a new surface size and rewrites the camera projection so
	// one world unit keeps mapping to one pixel. The surface and render targets
	// are reconfigured at the start of the next pass, never under an open one.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)

	// Release releases the batch's GPU resources (quad, uniform arena, camera).
	// Atlases are caller-owned and released separately.
	Release()
}

var _ SpriteBatch = &spriteBatchImpl{}

// NewSpriteBatch creates a SpriteBatch on the given Renderer. It registers the
// instanced, single-sprite, and presentation pipelines, uploads the shared
// unit quad, wires the presentation blit, and initializes the camera uniform
// and single-sprite uniform arena.
//
// Parameters:
//   - r: the Renderer to draw through
//   - options: functional options to configure the batch
//
// Returns:
//   - SpriteBatch: the created batch
//   - error: an error if pipeline or GPU resource creation fails
func NewSpriteBatch(r renderer.Renderer, options ...SpriteBatchBuilderOption) (SpriteBatch, error) {
	// The sprite record layout is a CPU/GPU contract; a mismatch corrupts
	// every draw, so fail loudly before any GPU work.
	if (&GPUSprite{}).ByteSize() != atlas.SpriteStride {
		panic(fmt.Sprintf(
			"sprite record size %d does not match expected stride %d",
			(&GPUSprite{}).ByteSize(), atlas.SpriteStride,
		))
	}

	s := &spriteBatchImpl{
		mu:                  &sync.Mutex{},
		r:                   r,
		spriteCursors:       make(map[atlas.Atlas]int),
		encodeWorkers:       max(runtime.NumCPU()-1, 1),
		initialUniformSlots: defaultUniformSlots,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	s.uniformProvider = bind_group_provider.NewBindGroupProvider("sprite_uniform_arena")

	// Queue size of 256 accommodates encode chunk counts with headroom.
	s.encodePool = worker.NewDynamicWorkerPool(s.encodeWorkers, 256, 1*time.Second)

	instancedVS := shader.NewShader("sprite_instanced_vs", shader.ShaderTypeVertex, shader.SpriteInstancedSource)
	instancedFS := shader.NewShader("sprite_instanced_fs", shader.ShaderTypeFragment, shader.SpriteInstancedSource)
	spriteVS := shader.NewShader("sprite_vs", shader.ShaderTypeVertex, shader.SpriteSource)
	spriteFS := shader.NewShader("sprite_fs", shader.ShaderTypeFragment, shader.SpriteSource)
	presentVS := shader.NewShader("present_vs", shader.ShaderTypeVertex, shader.PresentSource)
	presentFS := shader.NewShader("present_fs", shader.ShaderTypeFragment, shader.PresentSource)

	err := r.RegisterPipelines(
		pipeline.NewPipeline(PipelineKeySpriteInstanced,
			pipeline.WithVertexShader(instancedVS),
			pipeline.WithFragmentShader(instancedFS),
			pipeline.WithBindGroupLayouts(map[int]wgpu.BindGroupLayoutDescriptor{
				0: CameraBindGroupLayout(),
				1: atlas.DataBindGroupLayout(),
				2: atlas.TextureBindGroupLayout(),
			}),
			pipeline.WithVertexLayouts(QuadVertexLayout()),
			pipeline.WithBlend(true),
		),
		pipeline.NewPipeline(PipelineKeySprite,
			pipeline.WithVertexShader(spriteVS),
			pipeline.WithFragmentShader(spriteFS),
			pipeline.WithBindGroupLayouts(map[int]wgpu.BindGroupLayoutDescriptor{
				0: CameraBindGroupLayout(),
				1: UniformBindGroupLayout(),
				2: atlas.TextureBindGroupLayout(),
			}),
			pipeline.WithVertexLayouts(QuadVertexLayout()),
			pipeline.WithBlend(true),
		),
		pipeline.NewPipeline(PipelineKeyPresent,
			pipeline.WithVertexShader(presentVS),
			pipeline.WithFragmentShader(presentFS),
			pipeline.WithTarget(pipeline.TargetSurface),
			pipeline.WithBindGroupLayouts(map[int]wgpu.BindGroupLayoutDescriptor{
				0: PresentBindGroupLayout(),
			}),
			pipeline.WithVertexLayouts(QuadVertexLayout()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register sprite pipelines: %w", err)
	}

	s.quad, err = mesh.NewUnitQuad(r)
	if err != nil {
		return nil, err
	}

	if err := r.InitPresentPass(PipelineKeyPresent, s.quad.Provider()); err != nil {
		return nil, fmt.Errorf("failed to wire presentation pass: %w", err)
	}

	if err := r.InitBindGroup(s.cam.BindGroupProvider(), CameraBindGroupLayout(), nil, nil); err != nil {
		return nil, fmt.Errorf("failed to init camera bind group: %w", err)
	}

	if err := r.InitBindGroup(s.uniformProvider, UniformBindGroupLayout(), nil, map[int]uint64{
		UniformBufferBinding: uint64(s.initialUniformSlots) * UniformSlotSize,
	}); err != nil {
		return nil, fmt.Errorf("failed to init sprite uniform arena: %w", err)
	}

	return s, nil
}

func (s *spriteBatchImpl) Camera() camera.Camera {
	return s.cam
}

func (s *spriteBatchImpl) BeginPass() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.passActive {
		return errors.New("sprite pass already open")
	}

	// Surface reconfiguration releases the offscreen attachments an open
	// pass would still reference, so requests made mid-frame land here.
	if s.pendingResize != nil {
		s.r.Resize(s.pendingResize[0], s.pendingResize[1])
		s.pendingResize = nil
	}

	if write, ok := s.cam.StagedWrite(); ok {
		s.r.WriteBuffers([]bind_group_provider.BufferWrite{write})
	}

	if err := s.r.BeginPass(); err != nil {
		return err
	}
	s.usedSlots = 0
	s.passSprites = 0
	clear(s.spriteCursors)
	s.passActive = true
	return nil
}

func (s *spriteBatchImpl) DrawSprite(a atlas.Atlas, sprite Sprite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.passActive {
		return errors.New("no sprite pass open, call BeginPass first")
	}

	regionID := sprite.RegionID
	if maxID := uint32(a.RegionCount() - 1); regionID > maxID {
		log.Printf("sprite_batch: clamped sprite region id %d to %d", regionID, maxID)
		regionID = maxID
	}
	region, err := a.Region(int(regionID))
	if err != nil {
		return err
	}

	if err := s.ensureUniformSlot(); err != nil {
		return err
	}
	offset := s.usedSlots * UniformSlotSize
	s.usedSlots++

	model := make([]float32, 16)
	common.BuildSpriteMatrix(model,
		sprite.X, sprite.Y, float32(sprite.ZIndex),
		sprite.Rotation, sprite.Width, sprite.Height,
	)

	u := GPUSpriteUniform{
		RegionStart: [2]float32{region.StartU, region.StartV},
		RegionSize:  [2]float32{region.SizeU, region.SizeV},
		Flip:        [2]int32{flipFlag(sprite.FlipX), flipFlag(sprite.FlipY)},
	}
	copy(u.Model[:], model)

	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: s.uniformProvider,
			Binding:  UniformBufferBinding,
			Offset:   uint64(offset),
			Data:     u.Marshal(),
		},
	})

	if err := s.r.DrawCallUniform(PipelineKeySprite, s.quad.Provider(), []bind_group_provider.BindGroupProvider{
		s.cam.BindGroupProvider(),
		s.uniformProvider,
		a.TextureProvider(),
	}, 1, uint32(offset)); err != nil {
		return err
	}
	s.passSprites++
	return nil
}

func (s *spriteBatchImpl) DrawSprites(a atlas.Atlas, sprites []Sprite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.passActive {
		return errors.New("no sprite pass open, call BeginPass first")
	}
	if len(sprites) == 0 {
		return nil
	}

	// Append after any batch already drawn against this atlas in the current
	// pass. Writes execute on the queue timeline ahead of the frame's
	// submission, so reusing a range would overwrite earlier batches before
	// their draws run; the cursor keeps every batch in its own slice and
	// firstInstance points the vertex stage at it.
	cursor := s.spriteCursors[a]
	if err := a.EnsureSpriteCapacity(cursor + len(sprites)); err != nil {
		return err
	}

	data := s.encodeSprites(sprites, a.RegionCount())
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: a.DataProvider(),
			Binding:  atlas.SpriteBufferBinding,
			Offset:   uint64(cursor) * atlas.SpriteStride,
			Data:     data,
		},
	})

	if err := s.r.DrawCall(PipelineKeySpriteInstanced, s.quad.Provider(), uint32(len(sprites)), uint32(cursor), []bind_group_provider.BindGroupProvider{
		s.cam.BindGroupProvider(),
		a.DataProvider(),
		a.TextureProvider(),
	}); err != nil {
		return err
	}
	s.spriteCursors[a] = cursor + len(sprites)
	s.passSprites += len(sprites)
	return nil
}

func (s *spriteBatchImpl) EndPass() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.passActive {
		return errors.New("no sprite pass open, call BeginPass first")
	}
	s.passActive = false
	return s.r.EndPass()
}

func (s *spriteBatchImpl) Present() {
	s.r.Present()
}

func (s *spriteBatchImpl) SpriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passSprites
}

func (s *spriteBatchImpl) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingResize = &[2]int{width, height}
	s.cam.SetViewport(float32(width), float32(height))
}

func (s *spriteBatchImpl) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quad.Release()
	s.uniformProvider.Release()
	s.cam.Release()
}

// ensureUniformSlot grows the uniform arena when all slots are spoken for.
// Earlier draws in the frame reference the retired buffer through the old
// bind group captured in their encoded commands, so growth never copies.
// Caller must hold s.mu.
func (s *spriteBatchImpl) ensureUniformSlot() error {
	capacity := int(s.uniformProvider.BufferCapacity(UniformBufferBinding) / UniformSlotSize)
	if s.usedSlots < capacity {
		return nil
	}

	grown, err := s.r.EnsureBufferCapacity(
		s.uniformProvider,
		UniformBufferBinding,
		uint64(capacity*2)*UniformSlotSize,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst,
	)
	if err != nil {
		return err
	}
	if grown {
		if err := s.r.InitBindGroup(s.uniformProvider, UniformBindGroupLayout(), nil, nil); err != nil {
			return fmt.Errorf("failed to rebuild uniform arena bind group after growth: %w", err)
		}
	}
	return nil
}
