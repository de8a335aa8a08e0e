package sprite_batch

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/atlas"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// recordingRenderer satisfies renderer.Renderer without a GPU device. It
// tracks buffer capacities on providers the way the real backend does and
// records the writes, draws, and surface reconfigurations the batch issues.
type recordingRenderer struct {
	writes    []bind_group_provider.BufferWrite
	draws     []recordedDraw
	resizes   [][2]int
	pipelines map[string]pipeline.Pipeline
}

type recordedDraw struct {
	instanceCount uint32
	firstInstance uint32
}

var _ renderer.Renderer = &recordingRenderer{}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{pipelines: make(map[string]pipeline.Pipeline)}
}

func (r *recordingRenderer) Pipeline(key string) pipeline.Pipeline   { return r.pipelines[key] }
func (r *recordingRenderer) Pipelines() map[string]pipeline.Pipeline { return r.pipelines }

func (r *recordingRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		r.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (r *recordingRenderer) SetPipeline(key string, p pipeline.Pipeline) { r.pipelines[key] = p }
func (r *recordingRenderer) SetPipelines(pipelines map[string]pipeline.Pipeline) {
	r.pipelines = pipelines
}

func (r *recordingRenderer) Resize(width, height int) {
	r.resizes = append(r.resizes, [2]int{width, height})
}

func (r *recordingRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	provider.SetIndexCount(indexCount)
	return nil
}

func (r *recordingRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	for binding, size := range bufferSizeOverrides {
		provider.SetBufferCapacity(binding, size)
	}
	return nil
}

func (r *recordingRenderer) EnsureBufferCapacity(provider bind_group_provider.BindGroupProvider, binding int, size uint64, usage wgpu.BufferUsage) (bool, error) {
	if size <= provider.BufferCapacity(binding) {
		return false, nil
	}
	provider.SetBufferCapacity(binding, size)
	return true, nil
}

func (r *recordingRenderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return nil
}

func (r *recordingRenderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return nil
}

func (r *recordingRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.writes = append(r.writes, writes...)
}

func (r *recordingRenderer) InitPresentPass(pipelineKey string, quadProvider bind_group_provider.BindGroupProvider) error {
	return nil
}

func (r *recordingRenderer) BeginPass() error { return nil }

func (r *recordingRenderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount, firstInstance uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.draws = append(r.draws, recordedDraw{instanceCount: instanceCount, firstInstance: firstInstance})
	return nil
}

func (r *recordingRenderer) DrawCallUniform(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider, uniformGroup int, dynamicOffset uint32) error {
	return nil
}

func (r *recordingRenderer) EndPass() error { return nil }

func (r *recordingRenderer) Present()                            {}
func (r *recordingRenderer) DeferRelease(renderer.Releasable)    {}
func (r *recordingRenderer) SetPresentMode(renderer.PresentMode) {}

// stubAtlas satisfies atlas.Atlas with CPU-only providers. Capacity tracking
// mirrors the real atlas: grow-only, sized in sprite records.
type stubAtlas struct {
	r            renderer.Renderer
	dataProvider bind_group_provider.BindGroupProvider
	texProvider  bind_group_provider.BindGroupProvider
	regionCount  int
}

var _ atlas.Atlas = &stubAtlas{}

func newStubAtlas(r renderer.Renderer, label string, regionCount int) *stubAtlas {
	return &stubAtlas{
		r:            r,
		dataProvider: bind_group_provider.NewBindGroupProvider(label + "_data"),
		texProvider:  bind_group_provider.NewBindGroupProvider(label + "_texture"),
		regionCount:  regionCount,
	}
}

func (a *stubAtlas) Label() string  { return a.dataProvider.Label() }
func (a *stubAtlas) Width() uint32  { return 64 }
func (a *stubAtlas) Height() uint32 { return 64 }

func (a *stubAtlas) Region(index int) (atlas.Region, error) {
	return atlas.Region{SizeU: 0.5, SizeV: 0.5}, nil
}

func (a *stubAtlas) RegionCount() int { return a.regionCount }

func (a *stubAtlas) SpriteCapacity() int {
	return int(a.dataProvider.BufferCapacity(atlas.SpriteBufferBinding) / atlas.SpriteStride)
}

func (a *stubAtlas) EnsureSpriteCapacity(count int) error {
	_, err := a.r.EnsureBufferCapacity(a.dataProvider, atlas.SpriteBufferBinding, uint64(count)*atlas.SpriteStride, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	return err
}

func (a *stubAtlas) DataProvider() bind_group_provider.BindGroupProvider {
	return a.dataProvider
}

func (a *stubAtlas) TextureProvider() bind_group_provider.BindGroupProvider {
	return a.texProvider
}

func (a *stubAtlas) Release() {}

func makeSprites(n int) []Sprite {
	sprites := make([]Sprite, n)
	for i := range sprites {
		sprites[i] = Sprite{X: float32(i), Y: float32(i), Width: 16, Height: 16}
	}
	return sprites
}

// spriteWrites filters the recorded writes down to those targeting the given
// atlas's sprite buffer.
func spriteWrites(r *recordingRenderer, a atlas.Atlas) []bind_group_provider.BufferWrite {
	var out []bind_group_provider.BufferWrite
	for _, w := range r.writes {
		if w.Provider == a.DataProvider() && w.Binding == atlas.SpriteBufferBinding {
			out = append(out, w)
		}
	}
	return out
}

// Batches drawn against the same atlas within one pass must not overwrite each
// other: queue writes all complete before the frame's command buffer runs, so
// each batch gets an appended buffer range and a matching base instance.
func TestDrawSpritesAppendsWithinPass(t *testing.T) {
	rr := newRecordingRenderer()
	batch, err := NewSpriteBatch(rr)
	if err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}
	a := newStubAtlas(rr, "atlas_a", 4)

	if err := batch.BeginPass(); err != nil {
		t.Fatalf("begin pass: %v", err)
	}
	if err := batch.DrawSprites(a, makeSprites(3)); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := batch.DrawSprites(a, makeSprites(2)); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	writes := spriteWrites(rr, a)
	if len(writes) != 2 {
		t.Fatalf("sprite buffer writes = %d, want 2", len(writes))
	}
	if writes[0].Offset != 0 {
		t.Errorf("first batch write offset = %d, want 0", writes[0].Offset)
	}
	if want := uint64(3 * atlas.SpriteStride); writes[1].Offset != want {
		t.Errorf("second batch write offset = %d, want %d", writes[1].Offset, want)
	}
	if len(writes[1].Data) != 2*atlas.SpriteStride {
		t.Errorf("second batch write size = %d, want %d", len(writes[1].Data), 2*atlas.SpriteStride)
	}

	if len(rr.draws) != 2 {
		t.Fatalf("instanced draws = %d, want 2", len(rr.draws))
	}
	if rr.draws[0].instanceCount != 3 || rr.draws[0].firstInstance != 0 {
		t.Errorf("first draw = %+v, want {3 0}", rr.draws[0])
	}
	if rr.draws[1].instanceCount != 2 || rr.draws[1].firstInstance != 3 {
		t.Errorf("second draw = %+v, want {2 3}", rr.draws[1])
	}

	// The buffer must hold the pass total, not just the largest single batch.
	if got := a.SpriteCapacity(); got < 5 {
		t.Errorf("sprite capacity after two batches = %d, want >= 5", got)
	}
}

func TestDrawSpritesCursorPerAtlas(t *testing.T) {
	rr := newRecordingRenderer()
	batch, err := NewSpriteBatch(rr)
	if err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}
	a := newStubAtlas(rr, "atlas_a", 4)
	b := newStubAtlas(rr, "atlas_b", 4)

	if err := batch.BeginPass(); err != nil {
		t.Fatalf("begin pass: %v", err)
	}
	if err := batch.DrawSprites(a, makeSprites(3)); err != nil {
		t.Fatalf("atlas a: %v", err)
	}
	if err := batch.DrawSprites(b, makeSprites(4)); err != nil {
		t.Fatalf("atlas b: %v", err)
	}

	bWrites := spriteWrites(rr, b)
	if len(bWrites) != 1 || bWrites[0].Offset != 0 {
		t.Errorf("other atlas should start at offset 0, writes = %+v", bWrites)
	}
	if rr.draws[1].firstInstance != 0 {
		t.Errorf("other atlas draw firstInstance = %d, want 0", rr.draws[1].firstInstance)
	}
}

func TestDrawSpritesCursorResetsEachPass(t *testing.T) {
	rr := newRecordingRenderer()
	batch, err := NewSpriteBatch(rr)
	if err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}
	a := newStubAtlas(rr, "atlas_a", 4)

	if err := batch.BeginPass(); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if err := batch.DrawSprites(a, makeSprites(3)); err != nil {
		t.Fatalf("first pass draw: %v", err)
	}
	if err := batch.EndPass(); err != nil {
		t.Fatalf("end pass: %v", err)
	}

	if err := batch.BeginPass(); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if err := batch.DrawSprites(a, makeSprites(2)); err != nil {
		t.Fatalf("second pass draw: %v", err)
	}

	writes := spriteWrites(rr, a)
	last := writes[len(writes)-1]
	if last.Offset != 0 {
		t.Errorf("first batch of a new pass wrote at offset %d, want 0", last.Offset)
	}
	lastDraw := rr.draws[len(rr.draws)-1]
	if lastDraw.firstInstance != 0 {
		t.Errorf("first draw of a new pass firstInstance = %d, want 0", lastDraw.firstInstance)
	}
}

func TestSpriteCountTracksPass(t *testing.T) {
	rr := newRecordingRenderer()
	batch, err := NewSpriteBatch(rr)
	if err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}
	a := newStubAtlas(rr, "atlas_a", 4)

	if err := batch.BeginPass(); err != nil {
		t.Fatalf("begin pass: %v", err)
	}
	if err := batch.DrawSprites(a, makeSprites(3)); err != nil {
		t.Fatalf("draw sprites: %v", err)
	}
	if err := batch.DrawSprite(a, Sprite{Width: 16, Height: 16}); err != nil {
		t.Fatalf("draw sprite: %v", err)
	}
	if got := batch.SpriteCount(); got != 4 {
		t.Errorf("sprite count mid-pass = %d, want 4", got)
	}

	if err := batch.EndPass(); err != nil {
		t.Fatalf("end pass: %v", err)
	}
	if got := batch.SpriteCount(); got != 4 {
		t.Errorf("sprite count after end pass = %d, want 4", got)
	}

	if err := batch.BeginPass(); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if got := batch.SpriteCount(); got != 0 {
		t.Errorf("sprite count after new pass = %d, want 0", got)
	}
}

// Surface reconfiguration requested while a pass is open must wait for the
// next BeginPass; the open pass still references the current render targets.
func TestResizeDeferredToNextPass(t *testing.T) {
	rr := newRecordingRenderer()
	batch, err := NewSpriteBatch(rr)
	if err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}

	if err := batch.BeginPass(); err != nil {
		t.Fatalf("begin pass: %v", err)
	}
	batch.Resize(1024, 768)
	if len(rr.resizes) != 0 {
		t.Fatalf("surface reconfigured under an open pass: %v", rr.resizes)
	}

	// The camera projection updates immediately so the staged write lands
	// with the reconfigured surface.
	if w, h := batch.Camera().Viewport(); w != 1024 || h != 768 {
		t.Errorf("camera viewport = %vx%v, want 1024x768", w, h)
	}

	if err := batch.EndPass(); err != nil {
		t.Fatalf("end pass: %v", err)
	}
	if len(rr.resizes) != 0 {
		t.Fatalf("surface reconfigured before next pass: %v", rr.resizes)
	}

	if err := batch.BeginPass(); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(rr.resizes) != 1 || rr.resizes[0] != [2]int{1024, 768} {
		t.Errorf("resizes = %v, want [[1024 768]]", rr.resizes)
	}

	// The request is consumed once applied.
	if err := batch.EndPass(); err != nil {
		t.Fatalf("end second pass: %v", err)
	}
	if err := batch.BeginPass(); err != nil {
		t.Fatalf("third pass: %v", err)
	}
	if len(rr.resizes) != 1 {
		t.Errorf("resize applied again: %v", rr.resizes)
	}
}
