// Package utils holds small helpers for optional JSON fields.
package utils

// Value dereferences p, giving the zero value for nil.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Ptr returns a pointer to a copy of v, e.g. for an optional timestamp.
func Ptr[T any](v T) *T {
	return &v
}
