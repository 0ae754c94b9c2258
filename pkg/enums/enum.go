package enums

import (
	"fmt"
	"slices"
)

func isOneOf[T ~string](valid []T, v T) bool {
	return slices.Contains(valid, v)
}

func parseOneOf[T ~string](kind string, valid []T, raw string) (T, error) {
	if v := T(raw); isOneOf(valid, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
