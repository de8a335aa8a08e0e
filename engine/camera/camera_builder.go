package camera

// CameraBuilderOption is a functional option applied to a camera during construction via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithViewport sets the visible world region in world units.
//
// Parameters:
//   - width, height: the visible world region
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's viewport
func WithViewport(width, height float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width > 0 && height > 0 {
			c.width = width
			c.height = height
		}
	}
}

// WithZRange sets the z-index depth range.
//
// Parameters:
//   - zNear, zFar: the depth range bounds
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's depth range
func WithZRange(zNear, zFar float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if zFar > zNear {
			c.zNear = zNear
			c.zFar = zFar
		}
	}
}
