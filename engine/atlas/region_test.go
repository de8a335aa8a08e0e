package atlas

import (
	"math"
	"testing"
)

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		name    string
		desc    RegionDescriptor
		texW    uint32
		texH    uint32
		want    Region
		wantErr bool
	}{
		{
			name: "corner region of non-square atlas",
			desc: RegionDescriptor{X: 0, Y: 0, Width: 32, Height: 32},
			texW: 256, texH: 128,
			want: Region{StartU: 0, StartV: 0, SizeU: 0.125, SizeV: 0.25},
		},
		{
			name: "offset region",
			desc: RegionDescriptor{X: 64, Y: 32, Width: 64, Height: 64},
			texW: 256, texH: 128,
			want: Region{StartU: 0.25, StartV: 0.25, SizeU: 0.25, SizeV: 0.5},
		},
		{
			name: "full texture",
			desc: RegionDescriptor{X: 0, Y: 0, Width: 128, Height: 128},
			texW: 128, texH: 128,
			want: Region{StartU: 0, StartV: 0, SizeU: 1, SizeV: 1},
		},
		{
			name: "region flush against right edge",
			desc: RegionDescriptor{X: 96, Y: 0, Width: 32, Height: 32},
			texW: 128, texH: 128,
			want: Region{StartU: 0.75, StartV: 0, SizeU: 0.25, SizeV: 0.25},
		},
		{
			name: "region past right edge",
			desc: RegionDescriptor{X: 100, Y: 0, Width: 32, Height: 32},
			texW: 128, texH: 128,
			wantErr: true,
		},
		{
			name: "region past bottom edge",
			desc: RegionDescriptor{X: 0, Y: 120, Width: 16, Height: 16},
			texW: 128, texH: 128,
			wantErr: true,
		},
		{
			name: "zero texture dimensions",
			desc: RegionDescriptor{X: 0, Y: 0, Width: 1, Height: 1},
			texW: 0, texH: 0,
			wantErr: true,
		},
		{
			name: "x offset wraps uint32 range",
			desc: RegionDescriptor{X: math.MaxUint32, Y: 0, Width: 1, Height: 16},
			texW: 256, texH: 128,
			wantErr: true,
		},
		{
			name: "y offset wraps uint32 range",
			desc: RegionDescriptor{X: 0, Y: math.MaxUint32 - 8, Width: 16, Height: 16},
			texW: 256, texH: 128,
			wantErr: true,
		},
		{
			name: "width wraps uint32 range",
			desc: RegionDescriptor{X: 16, Y: 0, Width: math.MaxUint32, Height: 16},
			texW: 256, texH: 128,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRegion(tt.desc, tt.texW, tt.texH)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error, got region %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("normalized region = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestNormalizeRegionUVBounds checks the invariant that a valid region's UVs
// never leave [0, 1].
func TestNormalizeRegionUVBounds(t *testing.T) {
	descs := []RegionDescriptor{
		{X: 0, Y: 0, Width: 1, Height: 1},
		{X: 254, Y: 126, Width: 2, Height: 2},
		{X: 17, Y: 3, Width: 100, Height: 99},
	}
	for _, desc := range descs {
		r, err := NormalizeRegion(desc, 256, 128)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", desc, err)
		}
		if r.StartU < 0 || r.StartV < 0 || r.StartU+r.SizeU > 1 || r.StartV+r.SizeV > 1 {
			t.Errorf("region %+v leaves [0,1] UV space: %+v", desc, r)
		}
	}
}

func TestGPURegionMarshal(t *testing.T) {
	g := GPURegion{Start: [2]float32{0.25, 0.5}, Size: [2]float32{0.125, 0.75}}
	if g.ByteSize() != RegionStride {
		t.Fatalf("GPURegion size = %d, want %d", g.ByteSize(), RegionStride)
	}
	buf := g.Marshal()
	if len(buf) != RegionStride {
		t.Fatalf("marshaled length = %d, want %d", len(buf), RegionStride)
	}
}
