// Package enums holds the closed string sets persisted in the database and
// carried over the wire.
package enums

import (
	"fmt"
	"slices"
	"strings"
)

func member[T ~string](set []T, v T) bool {
	return slices.Contains(set, v)
}

// parse matches trimmed input against set. Folded comparison accepts any
// casing of a member.
func parse[T ~string](set []T, kind, value string, folded bool) (T, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range set {
		if string(candidate) == trimmed || (folded && strings.EqualFold(string(candidate), trimmed)) {
			return candidate, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, value)
}
