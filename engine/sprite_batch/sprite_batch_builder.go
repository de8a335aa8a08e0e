package sprite_batch

import "github.com/Carmen-Shannon/oxy2d/engine/camera"

// SpriteBatchBuilderOption is a functional option applied to a sprite batch during construction via NewSpriteBatch.
type SpriteBatchBuilderOption func(*spriteBatchImpl)

// WithCamera sets the camera the batch draws through. When not provided the
// batch creates a default camera.
//
// Parameters:
//   - cam: the camera to use
//
// Returns:
//   - SpriteBatchBuilderOption: a function that applies the camera to a sprite batch
func WithCamera(cam camera.Camera) SpriteBatchBuilderOption {
	return func(s *spriteBatchImpl) {
		s.cam = cam
	}
}

// WithUniformSlots sets the initial slot capacity of the single-sprite uniform
// arena. The arena still grows on demand when a frame draws more single
// sprites than it has slots.
//
// Parameters:
//   - slots: the initial slot count, must be greater than zero
//
// Returns:
//   - SpriteBatchBuilderOption: a function that applies the slot count to a sprite batch
func WithUniformSlots(slots int) SpriteBatchBuilderOption {
	return func(s *spriteBatchImpl) {
		if slots > 0 {
			s.initialUniformSlots = slots
		}
	}
}

// WithEncodeWorkers sets the number of workers used for parallel sprite record
// encoding of large batches. Defaults to NumCPU-1.
//
// Parameters:
//   - workers: the worker count, must be greater than zero
//
// Returns:
//   - SpriteBatchBuilderOption: a function that applies the worker count to a sprite batch
func WithEncodeWorkers(workers int) SpriteBatchBuilderOption {
	return func(s *spriteBatchImpl) {
		if workers > 0 {
			s.encodeWorkers = workers
		}
	}
}
