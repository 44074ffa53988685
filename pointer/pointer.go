// Package pointer has helpers for optional fields modelled as pointers.
package pointer

// From returns a pointer to a copy of t.
func From[T any](t T) *T {
	return &t
}

// ValueOrZero dereferences v, returning the zero value for nil.
func ValueOrZero[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
