package enums

import (
	"fmt"
	"slices"
	"strings"
)

// parse matches value exactly against the allowed set. kind names the enum in errors.
func parse[T ~string](kind, value string, allowed []T) (T, error) {
	if i := slices.Index(allowed, T(value)); i >= 0 {
		return allowed[i], nil
	}
	return "", fmt.Errorf("invalid %s %q (want one of %s)", kind, value, join(allowed))
}

func join[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
