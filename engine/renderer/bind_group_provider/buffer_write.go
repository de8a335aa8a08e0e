package bind_group_provider

// BufferWrite describes a pending write of CPU-side data into a provider's GPU buffer.
// Components stage BufferWrite values each frame and hand them to Renderer.WriteBuffers,
// which uploads them through the device queue.
type BufferWrite struct {
	// Provider is the BindGroupProvider that owns the target buffer.
	Provider BindGroupProvider
	// Binding is the binding index of the target buffer within the provider.
	Binding int
	// Offset is the byte offset into the target buffer.
	Offset uint64
	// Data is the raw bytes to upload.
	Data []byte
}
