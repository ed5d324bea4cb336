package ptr

// Ptr возвращает указатель на копию v
func Ptr[T any](v T) *T {
	return &v
}

// Deref значение по указателю p или def, если p == nil
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
