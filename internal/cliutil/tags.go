package cliutil

import (
	"fmt"
	"strings"
)

// ParseTagFilter parses a "KEY=VALUE" string into its key and value parts.
// Returns empty strings without error when raw is empty.
func ParseTagFilter(raw string) (string, string, error) {
	if raw == "" {
		return "", "", nil
	}

	parts := strings.SplitN(raw, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", "", fmt.Errorf("--filter-tag must use KEY=VALUE format")
	}

	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// TagValue returns the value of the first tag named key. keyValue reads the
// key and value out of the service-specific tag type.
func TagValue[T any](tags []T, key string, keyValue func(T) (*string, *string)) (string, bool) {
	for _, tag := range tags {
		k, v := keyValue(tag)
		if PointerToString(k) == key {
			return PointerToString(v), true
		}
	}
	return "", false
}

// HasTag reports whether tags contain key=value.
func HasTag[T any](tags []T, key, value string, keyValue func(T) (*string, *string)) bool {
	got, ok := TagValue(tags, key, keyValue)
	return ok && got == value
}
