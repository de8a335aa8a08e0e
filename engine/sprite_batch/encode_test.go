package sprite_batch

import (
	"bytes"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy2d/engine/atlas"
)

func TestEncodeChunkLayout(t *testing.T) {
	sprites := []Sprite{
		{X: 1, Y: 2, Width: 3, Height: 4, Rotation: 0.5, ZIndex: 1, RegionID: 0},
		{X: -5, Y: 6, Width: 7, Height: 8, FlipX: true, FlipY: true, RegionID: 3},
	}
	buf := make([]byte, len(sprites)*atlas.SpriteStride)

	if clamped := encodeChunk(sprites, 3, buf); clamped != 0 {
		t.Fatalf("clamped = %d, want 0", clamped)
	}

	// Each record must equal the standalone marshal of the same sprite.
	want0 := (&GPUSprite{
		Pos: [2]float32{1, 2}, Size: [2]float32{3, 4},
		Rotation: 0.5, ZIndex: 1, RegionID: 0,
	}).Marshal()
	want1 := (&GPUSprite{
		Pos: [2]float32{-5, 6}, Size: [2]float32{7, 8},
		Flip: [2]int32{1, 1}, RegionID: 3,
	}).Marshal()

	if !bytes.Equal(buf[:atlas.SpriteStride], want0) {
		t.Error("record 0 does not match its standalone marshal")
	}
	if !bytes.Equal(buf[atlas.SpriteStride:], want1) {
		t.Error("record 1 does not match its standalone marshal")
	}
}

func TestEncodeChunkClampsRegionIDs(t *testing.T) {
	sprites := []Sprite{
		{RegionID: 0},
		{RegionID: 2},
		{RegionID: 3}, // out of range for a 3-region atlas
		{RegionID: 99},
	}
	buf := make([]byte, len(sprites)*atlas.SpriteStride)

	clamped := encodeChunk(sprites, 2, buf)
	if clamped != 2 {
		t.Fatalf("clamped = %d, want 2", clamped)
	}

	for i := range sprites {
		id := u32At(buf, i*atlas.SpriteStride+32)
		if id > 2 {
			t.Errorf("record %d encoded region id %d, want <= 2", i, id)
		}
	}
	// Caller-owned sprites must not be mutated by clamping.
	if sprites[3].RegionID != 99 {
		t.Errorf("input sprite region id mutated to %d", sprites[3].RegionID)
	}
}

// TestEncodeSpritesParallelMatchesSerial verifies the fan-out path produces
// byte-identical output to a single-pass encode.
func TestEncodeSpritesParallelMatchesSerial(t *testing.T) {
	count := parallelEncodeThreshold * 3
	sprites := make([]Sprite, count)
	for i := range sprites {
		sprites[i] = Sprite{
			X:        float32(i),
			Y:        float32(-i),
			Width:    float32(i%17 + 1),
			Height:   float32(i%13 + 1),
			Rotation: float32(i) * 0.01,
			ZIndex:   int32(i % 5),
			RegionID: uint32(i % 6), // ids 4 and 5 will clamp against a 4-region atlas
			FlipX:    i%2 == 0,
			FlipY:    i%3 == 0,
		}
	}

	s := &spriteBatchImpl{
		encodeWorkers: 4,
		encodePool:    worker.NewDynamicWorkerPool(4, 256, 100*time.Millisecond),
	}

	parallel := s.encodeSprites(sprites, 4)

	serial := make([]byte, count*atlas.SpriteStride)
	encodeChunk(sprites, 3, serial)

	if !bytes.Equal(parallel, serial) {
		t.Fatal("parallel encode differs from serial encode")
	}
}

func TestFlipFlag(t *testing.T) {
	if flipFlag(true) != 1 || flipFlag(false) != 0 {
		t.Errorf("flipFlag mapping wrong: true=%d false=%d", flipFlag(true), flipFlag(false))
	}
}
