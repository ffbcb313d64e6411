// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package layout

// Split divides total cells between count children sized by
// constraints and returns each child's size. The sizes always sum to
// total (for non-negative total).
//
// Percentage children get their share of total and Min children their
// minimum; Max children start empty. Space left over goes first to Max
// children, each up to its cap, then to the first Min child, then to
// the last child. When the requested sizes exceed total, children are
// shrunk starting from the last one.
//
// Without constraints the children share total equally, the last child
// taking the remainder.
func Split(total int, count int, constraints []Constraint) []int {
	if count <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	sizes := make([]int, count)

	if len(constraints) != count {
		for index := range sizes {
			sizes[index] = total / count
		}
		sizes[count-1] += total % count
		return sizes
	}

	used := 0
	for index, constraint := range constraints {
		switch constraint.Kind {
		case ConstraintPercentage:
			sizes[index] = total * constraint.Value / 100
		case ConstraintMin:
			sizes[index] = constraint.Value
		}
		used += sizes[index]
	}

	leftover := total - used
	for index, constraint := range constraints {
		if leftover <= 0 {
			break
		}
		if constraint.Kind == ConstraintMax {
			grant := min(constraint.Value, leftover)
			sizes[index] += grant
			leftover -= grant
		}
	}
	if leftover > 0 {
		target := count - 1
		for index, constraint := range constraints {
			if constraint.Kind == ConstraintMin {
				target = index
				break
			}
		}
		sizes[target] += leftover
		leftover = 0
	}

	for index := count - 1; index >= 0 && leftover < 0; index-- {
		shrink := min(sizes[index], -leftover)
		sizes[index] -= shrink
		leftover += shrink
	}
	return sizes
}
