package bind_group_provider

import "testing"

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("test", WithIndexCount(6))
	if p.Label() != "test" {
		t.Errorf("label = %q, want %q", p.Label(), "test")
	}
	if p.IndexCount() != 6 {
		t.Errorf("index count = %d, want 6", p.IndexCount())
	}
	if p.Buffer(0) != nil {
		t.Error("fresh provider has a buffer at binding 0")
	}
	if p.BindGroup() != nil {
		t.Error("fresh provider has a bind group")
	}
}

func TestBufferCapacityTracking(t *testing.T) {
	p := NewBindGroupProvider("capacity")

	if got := p.BufferCapacity(0); got != 0 {
		t.Errorf("unset capacity = %d, want 0", got)
	}

	p.SetBufferCapacity(0, 40*256)
	p.SetBufferCapacity(1, 16*4)

	if got := p.BufferCapacity(0); got != 40*256 {
		t.Errorf("capacity at binding 0 = %d, want %d", got, 40*256)
	}
	if got := p.BufferCapacity(1); got != 16*4 {
		t.Errorf("capacity at binding 1 = %d, want %d", got, 16*4)
	}

	// Capacities are tracked per binding and can be replaced.
	p.SetBufferCapacity(0, 80*256)
	if got := p.BufferCapacity(0); got != 80*256 {
		t.Errorf("updated capacity at binding 0 = %d, want %d", got, 80*256)
	}
}

func TestSetIndexCount(t *testing.T) {
	p := NewBindGroupProvider("quad")
	p.SetIndexCount(6)
	if p.IndexCount() != 6 {
		t.Errorf("index count = %d, want 6", p.IndexCount())
	}
}
