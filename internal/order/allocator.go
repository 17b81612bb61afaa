// Package order implements fractional order-key arithmetic for sibling
// ranking. An order key is a float64 in (0,1); inserting between two
// siblings takes the midpoint of their keys.
package order

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Direction describes where a node is placed relative to a reference node.
type Direction string

const (
	Before     Direction = "before"
	After      Direction = "after"
	FirstChild Direction = "first-child"
	Nowhere    Direction = "nowhere"
)

// ErrPrecisionExhausted is returned when a computed order key is too close
// to 0 or 1 for further binary subdivision. The caller is expected to
// renumber the affected sibling group (see Renumber) and retry.
var ErrPrecisionExhausted = errors.New("order key precision exhausted")

// epsilon is the smallest x such that 1+x != 1 in float64.
var epsilon = math.Nextafter(1, 2) - 1

// SortSiblings returns the sibling group in ascending order-key order.
// Siblings without an explicit order are sorted by compare and assigned
// keys evenly spaced below the first explicit key (or below 1 when no
// sibling has an explicit key). Assigned keys are reported in the returned
// map so the caller can persist them. The input slice is not modified.
func SortSiblings[T any](siblings []T, id func(T) string, getOrder func(T) (float64, bool), compare func(a, b T) int) ([]T, map[string]float64) {
	var ordered, unordered []T
	for _, s := range siblings {
		if _, ok := getOrder(s); ok {
			ordered = append(ordered, s)
		} else {
			unordered = append(unordered, s)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, _ := getOrder(ordered[i])
		b, _ := getOrder(ordered[j])
		return a < b
	})
	sort.SliceStable(unordered, func(i, j int) bool {
		return compare(unordered[i], unordered[j]) < 0
	})

	// Unordered siblings are squeezed into (0, firstOrder) so the
	// concatenation below is already globally ascending.
	firstOrder := 1.0
	if len(ordered) > 0 {
		firstOrder, _ = getOrder(ordered[0])
	}

	assigned := make(map[string]float64)
	gap := firstOrder / float64(len(unordered)+1)
	for i, s := range unordered {
		assigned[id(s)] = gap * float64(i+1)
	}

	result := make([]T, 0, len(siblings))
	result = append(result, unordered...)
	result = append(result, ordered...)
	return result, assigned
}

// PlaceWithinSiblings computes the order key for a node placed before or
// after the sibling with id relativeTo, or as the first child of a parent
// whose current children are given. The siblings slice must already be in
// ascending order (build output order); keys assigned at build time are
// looked up through missing.
func PlaceWithinSiblings[T any](dir Direction, relativeTo string, siblings []T, missing map[string]float64, id func(T) string, getOrder func(T) (float64, bool)) (float64, error) {
	resolve := func(s T) (float64, error) {
		if o, ok := getOrder(s); ok {
			return o, nil
		}
		if o, ok := missing[id(s)]; ok {
			return o, nil
		}
		return 0, fmt.Errorf("sibling %q has no resolved order", id(s))
	}

	if dir == FirstChild {
		if len(siblings) == 0 {
			return 0.5, nil
		}
		first, err := resolve(siblings[0])
		if err != nil {
			return 0, err
		}
		return first / 2, nil
	}

	ref := -1
	for i, s := range siblings {
		if id(s) == relativeTo {
			ref = i
			break
		}
	}
	if ref < 0 {
		return 0, fmt.Errorf("reference node %q is not among the siblings", relativeTo)
	}

	refOrder, err := resolve(siblings[ref])
	if err != nil {
		return 0, err
	}

	switch dir {
	case Before:
		prev := 0.0
		if ref > 0 {
			if prev, err = resolve(siblings[ref-1]); err != nil {
				return 0, err
			}
		}
		return (prev + refOrder) / 2, nil
	case After:
		next := 1.0
		if ref < len(siblings)-1 {
			if next, err = resolve(siblings[ref+1]); err != nil {
				return 0, err
			}
		}
		return (refOrder + next) / 2, nil
	}
	return 0, fmt.Errorf("cannot place %q: unexpected direction %q", relativeTo, dir)
}

// CheckPrecision reports whether an order key is still usable. Keys within
// float64 precision of the 0/1 fenceposts cannot be subdivided further.
func CheckPrecision(o float64) error {
	if o <= math.SmallestNonzeroFloat64 {
		return fmt.Errorf("order %g too close to 0: %w", o, ErrPrecisionExhausted)
	}
	if 1-o <= epsilon {
		return fmt.Errorf("order %g too close to 1: %w", o, ErrPrecisionExhausted)
	}
	return nil
}

// Renumber returns n order keys evenly spaced in (0,1). Replacing a sibling
// group's keys with these restores full subdivision headroom after
// ErrPrecisionExhausted.
func Renumber(n int) []float64 {
	keys := make([]float64, n)
	gap := 1.0 / float64(n+1)
	for i := range keys {
		keys[i] = gap * float64(i+1)
	}
	return keys
}
