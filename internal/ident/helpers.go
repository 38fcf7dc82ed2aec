package ident

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// Indent appends amount spaces to b.
func Indent(amount int, b *strings.Builder) {
	if amount <= 0 {
		return
	}
	b.WriteString(strings.Repeat(" ", amount))
}

// List collects the values into a slice. The result is never nil.
func List[T any](data ...T) []T {
	out := make([]T, len(data))
	copy(out, data)
	return out
}

// ListFromSet returns the members of set in ascending order.
func ListFromSet[T cmp.Ordered](set map[T]struct{}) []T {
	if len(set) == 0 {
		return []T{}
	}
	return slices.Sorted(maps.Keys(set))
}
