package cliutil

// PointerToString safely dereferences a *string, returning "" for nil.
func PointerToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// PointerToInt32 safely dereferences a *int32, returning 0 for nil.
func PointerToInt32(value *int32) int32 {
	if value == nil {
		return 0
	}
	return *value
}

// Ptr returns a pointer to the given value.
func Ptr[T any](value T) *T {
	return &value
}

// PointerToInt64 safely dereferences a *int64, returning 0 for nil.
func PointerToInt64(value *int64) int64 {
	if value == nil {
		return 0
	}
	return *value
}

// PointerToBool safely dereferences a *bool, returning false for nil.
func PointerToBool(value *bool) bool {
	return value != nil && *value
}
