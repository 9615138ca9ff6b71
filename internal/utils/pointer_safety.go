package utils

func Ptr[T any](v T) *T {
	return &v
}

// PtrIfSet returns a pointer to v, or nil for the zero value.
func PtrIfSet[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
