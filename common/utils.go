package common

// Coalesce picks the first value in the list that differs from T's zero
// value. Useful for layering staging-data fields over defaults: pass the
// caller's value first and the fallback after it. An empty list or an
// all-zero list yields the zero value.
//
// Parameters:
//   - values: the candidate values, highest priority first
//
// Returns:
//   - T: the first non-zero value, or the zero value of T
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
