package common

import (
	"bytes"
	"testing"
)

func TestMipLevelCount(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		want          uint32
	}{
		{"1x1", 1, 1, 1},
		{"2x2", 2, 2, 2},
		{"256x256", 256, 256, 9},
		{"256x128 non-square", 256, 128, 9},
		{"3x1 non-power-of-two", 3, 1, 2},
		{"1920x1080", 1920, 1080, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MipLevelCount(tt.width, tt.height); got != tt.want {
				t.Errorf("MipLevelCount(%d, %d) = %d, want %d", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestBuildMipChainDimensions(t *testing.T) {
	// 8x4 base: expect levels 8x4, 4x2, 2x1, 1x1.
	base := make([]byte, 8*4*4)
	chain := BuildMipChain(base, 8, 4)

	wantSizes := []int{8 * 4 * 4, 4 * 2 * 4, 2 * 1 * 4, 1 * 1 * 4}
	if len(chain) != len(wantSizes) {
		t.Fatalf("chain has %d levels, want %d", len(chain), len(wantSizes))
	}
	for i, want := range wantSizes {
		if len(chain[i]) != want {
			t.Errorf("level %d has %d bytes, want %d", i, len(chain[i]), want)
		}
	}
	if uint32(len(chain)) != MipLevelCount(8, 4) {
		t.Errorf("chain length %d disagrees with MipLevelCount %d", len(chain), MipLevelCount(8, 4))
	}
}

func TestBuildMipChainAverages(t *testing.T) {
	// 2x2 image: four solid pixels whose box-filtered average is known.
	base := []byte{
		0, 0, 0, 255,
		100, 100, 100, 255,
		200, 200, 200, 255,
		100, 100, 100, 255,
	}
	chain := BuildMipChain(base, 2, 2)
	if len(chain) != 2 {
		t.Fatalf("chain has %d levels, want 2", len(chain))
	}

	want := []byte{100, 100, 100, 255}
	if !bytes.Equal(chain[1], want) {
		t.Errorf("1x1 level = %v, want %v", chain[1], want)
	}
}

func TestBuildMipChainSolidColor(t *testing.T) {
	// A solid color must survive filtering unchanged at every level.
	const w, h = 16, 16
	base := make([]byte, w*h*4)
	for i := 0; i < len(base); i += 4 {
		base[i], base[i+1], base[i+2], base[i+3] = 30, 60, 90, 255
	}

	chain := BuildMipChain(base, w, h)
	for level, pixels := range chain {
		for i := 0; i < len(pixels); i += 4 {
			if pixels[i] != 30 || pixels[i+1] != 60 || pixels[i+2] != 90 || pixels[i+3] != 255 {
				t.Fatalf("level %d pixel %d = %v, want solid (30,60,90,255)", level, i/4, pixels[i:i+4])
			}
		}
	}
}

func TestDecodeImageFileMissing(t *testing.T) {
	if _, _, _, err := DecodeImageFile("does/not/exist.png"); err == nil {
		t.Error("expected an error for a missing image file")
	}
}
