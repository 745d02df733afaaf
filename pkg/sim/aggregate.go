package sim

import (
	"cmp"
	"slices"
)

// Number covers the numeric types usable with the aggregate helpers.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Sum returns the sum of values. The sum of an empty slice is zero.
func Sum[T Number](values []T) T {
	var total T
	for _, v := range values {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean of values.
// It panics when values is empty; aggregate reductions are only ever invoked
// on non-empty collections.
func Mean[T Number](values []T) float64 {
	if len(values) == 0 {
		panic("sim.Mean: empty values")
	}
	var total float64
	for _, v := range values {
		total += float64(v)
	}
	return total / float64(len(values))
}

// Min returns the smallest value. It panics when values is empty.
func Min[T cmp.Ordered](values []T) T {
	return slices.Min(values)
}

// Max returns the largest value. It panics when values is empty.
func Max[T cmp.Ordered](values []T) T {
	return slices.Max(values)
}

// Median returns the middle element of the sorted values (the upper one for
// even counts, no interpolation). It panics when values is empty.
func Median[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		panic("sim.Median: empty values")
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return sorted[len(sorted)/2]
}

// Percentile returns the value at or below which p percent of the sorted
// values fall. p must be in [0, 100]. It panics when values is empty or p is
// out of range.
func Percentile[T cmp.Ordered](values []T, p float64) T {
	if len(values) == 0 {
		panic("sim.Percentile: empty values")
	}
	if p < 0 || p > 100 {
		panic("sim.Percentile: p out of range")
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	idx := int(p / 100 * float64(len(sorted)))
	if idx == len(sorted) {
		idx--
	}
	return sorted[idx]
}
