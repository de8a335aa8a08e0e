package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	w, h := c.Viewport()
	if w != 800 || h != 600 {
		t.Errorf("default viewport = %vx%v, want 800x600", w, h)
	}
	zNear, zFar := c.ZRange()
	if zNear != 0 || zFar != 100 {
		t.Errorf("default z range = %v..%v, want 0..100", zNear, zFar)
	}

	want := make([]float32, 16)
	common.Ortho(want, 800, 600, 0, 100)
	got := c.ProjectionMatrix()
	for i := range 16 {
		if got[i] != want[i] {
			t.Fatalf("projection element %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewCameraOptions(t *testing.T) {
	c := NewCamera(WithViewport(1920, 1080), WithZRange(-10, 10))

	w, h := c.Viewport()
	if w != 1920 || h != 1080 {
		t.Errorf("viewport = %vx%v, want 1920x1080", w, h)
	}
	zNear, zFar := c.ZRange()
	if zNear != -10 || zFar != 10 {
		t.Errorf("z range = %v..%v, want -10..10", zNear, zFar)
	}
}

func TestSetViewportRejectsInvalid(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionMatrix()

	c.SetViewport(0, 600)
	c.SetViewport(800, -1)

	if c.ProjectionMatrix() != before {
		t.Error("invalid viewport changed the projection")
	}
	w, h := c.Viewport()
	if w != 800 || h != 600 {
		t.Errorf("viewport changed to %vx%v after invalid sets", w, h)
	}
}

func TestSetZRangeRejectsInverted(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionMatrix()

	c.SetZRange(10, 10)
	c.SetZRange(50, 0)

	if c.ProjectionMatrix() != before {
		t.Error("invalid z range changed the projection")
	}
}

func TestStagedWriteDirtyTracking(t *testing.T) {
	c := NewCamera()

	// Fresh cameras have a pending upload.
	write, ok := c.StagedWrite()
	if !ok {
		t.Fatal("new camera has no staged write")
	}
	if write.Provider != c.BindGroupProvider() {
		t.Error("staged write targets the wrong provider")
	}
	if write.Binding != CameraDataBinding {
		t.Errorf("staged write binding = %d, want %d", write.Binding, CameraDataBinding)
	}
	if len(write.Data) != (&GPUCameraData{}).Size() {
		t.Errorf("staged write carries %d bytes, want %d", len(write.Data), (&GPUCameraData{}).Size())
	}

	// The upload clears the dirty flag until the projection changes again.
	if _, ok := c.StagedWrite(); ok {
		t.Error("clean camera still reports a staged write")
	}

	c.SetViewport(1024, 768)
	if _, ok := c.StagedWrite(); !ok {
		t.Error("viewport change did not stage a write")
	}

	c.SetZRange(0, 50)
	if _, ok := c.StagedWrite(); !ok {
		t.Error("z range change did not stage a write")
	}
}

func TestResizeKeepsPixelMapping(t *testing.T) {
	c := NewCamera()
	c.SetViewport(400, 200)

	m := c.ProjectionMatrix()
	// One world unit along X must span 2/width of clip space.
	if m[0] != 2.0/400 {
		t.Errorf("m[0] = %v, want %v", m[0], 2.0/400)
	}
	if m[5] != 2.0/200 {
		t.Errorf("m[5] = %v, want %v", m[5], 2.0/200)
	}
}
