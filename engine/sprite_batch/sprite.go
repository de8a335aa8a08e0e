package sprite_batch

// Sprite is a caller-owned description of one sprite to draw. The batch copies
// everything it needs during the draw call, so callers may reuse or mutate
// Sprite values freely between calls.
type Sprite struct {
	// X and Y are the world-space position of the sprite's center.
	X, Y float32

	// Width and Height are the sprite's world-space dimensions.
	Width, Height float32

	// FlipX and FlipY mirror the sprite's texture region on the given axis.
	FlipX, FlipY bool

	// Rotation is the sprite's rotation around its center in radians, counter-clockwise.
	Rotation float32

	// ZIndex selects the sprite's depth. A higher z-index draws in front of a
	// lower one; ordering is resolved by the depth buffer, not by submission order.
	ZIndex int32

	// RegionID indexes the atlas's region table. Values at or beyond the
	// atlas's region count are clamped to the last region with a logged warning.
	RegionID uint32
}
