package sprite_batch

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/atlas"
)

func f32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func u32At(buf []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(buf[offset:])
}

func TestGPUSpriteStride(t *testing.T) {
	if got := (&GPUSprite{}).ByteSize(); got != atlas.SpriteStride {
		t.Fatalf("GPUSprite size = %d, want %d", got, atlas.SpriteStride)
	}
}

func TestGPUSpriteMarshalOffsets(t *testing.T) {
	g := GPUSprite{
		Pos:      [2]float32{10, -20},
		Size:     [2]float32{32, 64},
		Flip:     [2]int32{1, 0},
		Rotation: 1.5,
		ZIndex:   -3,
		RegionID: 7,
	}
	buf := g.Marshal()
	if len(buf) != atlas.SpriteStride {
		t.Fatalf("marshaled length = %d, want %d", len(buf), atlas.SpriteStride)
	}

	if f32At(buf, 0) != 10 || f32At(buf, 4) != -20 {
		t.Errorf("position at offset 0 = (%v, %v), want (10, -20)", f32At(buf, 0), f32At(buf, 4))
	}
	if f32At(buf, 8) != 32 || f32At(buf, 12) != 64 {
		t.Errorf("size at offset 8 = (%v, %v), want (32, 64)", f32At(buf, 8), f32At(buf, 12))
	}
	if u32At(buf, 16) != 1 || u32At(buf, 20) != 0 {
		t.Errorf("flip at offset 16 = (%d, %d), want (1, 0)", u32At(buf, 16), u32At(buf, 20))
	}
	if f32At(buf, 24) != 1.5 {
		t.Errorf("rotation at offset 24 = %v, want 1.5", f32At(buf, 24))
	}
	if int32(u32At(buf, 28)) != -3 {
		t.Errorf("z-index at offset 28 = %d, want -3", int32(u32At(buf, 28)))
	}
	if u32At(buf, 32) != 7 {
		t.Errorf("region id at offset 32 = %d, want 7", u32At(buf, 32))
	}
}

func TestGPUSpriteUniformSize(t *testing.T) {
	if got := (&GPUSpriteUniform{}).Size(); got != 96 {
		t.Fatalf("GPUSpriteUniform size = %d, want 96", got)
	}
	if UniformSlotSize%256 != 0 {
		t.Fatalf("uniform slot size %d is not 256-byte aligned", UniformSlotSize)
	}
	if (&GPUSpriteUniform{}).Size() > UniformSlotSize {
		t.Fatal("uniform does not fit its dynamic-offset slot")
	}
}

func TestGPUSpriteUniformMarshal(t *testing.T) {
	g := GPUSpriteUniform{
		RegionStart: [2]float32{0.25, 0.5},
		RegionSize:  [2]float32{0.125, 0.25},
		Flip:        [2]int32{0, 1},
	}
	for i := range 16 {
		g.Model[i] = float32(i)
	}
	buf := g.Marshal()
	if len(buf) != 96 {
		t.Fatalf("marshaled length = %d, want 96", len(buf))
	}

	for i := range 16 {
		if f32At(buf, i*4) != float32(i) {
			t.Fatalf("model element %d = %v, want %v", i, f32At(buf, i*4), float32(i))
		}
	}
	if f32At(buf, 64) != 0.25 || f32At(buf, 68) != 0.5 {
		t.Errorf("region start at offset 64 = (%v, %v), want (0.25, 0.5)", f32At(buf, 64), f32At(buf, 68))
	}
	if f32At(buf, 72) != 0.125 || f32At(buf, 76) != 0.25 {
		t.Errorf("region size at offset 72 = (%v, %v), want (0.125, 0.25)", f32At(buf, 72), f32At(buf, 76))
	}
	if u32At(buf, 80) != 0 || u32At(buf, 84) != 1 {
		t.Errorf("flip at offset 80 = (%d, %d), want (0, 1)", u32At(buf, 80), u32At(buf, 84))
	}
}
