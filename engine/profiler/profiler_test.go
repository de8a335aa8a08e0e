package profiler

import (
	"testing"
	"time"
)

func TestAddSpritesAccumulates(t *testing.T) {
	p := NewProfiler()
	p.AddSprites(100)
	p.AddSprites(250)
	if p.spriteCount != 350 {
		t.Errorf("spriteCount = %d, want 350", p.spriteCount)
	}
}

func TestTickLogsAndResetsCounters(t *testing.T) {
	p := NewProfiler()
	p.updateInterval = 0

	p.AddSprites(500)
	if !p.Tick() {
		t.Fatal("expected stats to be logged with a zero update interval")
	}
	if p.frameCount != 0 || p.spriteCount != 0 {
		t.Errorf("counters after logging tick = (%d frames, %d sprites), want (0, 0)", p.frameCount, p.spriteCount)
	}
}

func TestTickBelowIntervalDoesNotLog(t *testing.T) {
	p := NewProfiler()
	p.updateInterval = time.Hour

	p.AddSprites(10)
	if p.Tick() {
		t.Fatal("stats logged before the update interval elapsed")
	}
	if p.frameCount != 1 || p.spriteCount != 10 {
		t.Errorf("counters = (%d frames, %d sprites), want (1, 10)", p.frameCount, p.spriteCount)
	}
}
