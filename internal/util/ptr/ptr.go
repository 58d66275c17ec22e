// Package ptr provides helpers for optional values.
package ptr

// Bool returns a pointer to the given bool value.
func Bool(b bool) *bool { return &b }

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
