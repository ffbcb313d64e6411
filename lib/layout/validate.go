// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"errors"
	"fmt"
)

// Validate checks that a layout can be displayed: exactly one input
// pane, a scroll pane with DefaultPaneID, no duplicate scroll IDs, no
// empty stacks, and one well-formed constraint per child wherever
// constraints are given. All problems are reported together.
func Validate(node Node) error {
	var errs []error
	seen := make(map[int]string)
	validateNode(node, "layout", seen, &errs)

	if count := node.InputCount(); count != 1 {
		errs = append(errs, invalid("layout", "expected exactly one input pane, found %d", count))
	}
	if _, ok := seen[DefaultPaneID]; !ok {
		errs = append(errs, invalid("layout", "missing scroll pane with id %d", DefaultPaneID))
	}
	return errors.Join(errs...)
}

func validateNode(node Node, path string, seen map[int]string, errs *[]error) {
	switch node.Kind {
	case KindVStack, KindHStack:
		if len(node.Children) == 0 {
			*errs = append(*errs, invalid(path, "%s has no children", node.Kind))
		}
		if len(node.Constraints) > 0 && len(node.Constraints) != len(node.Children) {
			*errs = append(*errs, invalid(path, "%d constraints for %d children",
				len(node.Constraints), len(node.Children)))
		}
		for index, constraint := range node.Constraints {
			if err := validateConstraint(constraint); err != nil {
				*errs = append(*errs, invalid(fmt.Sprintf("%s.constraints[%d]", path, index), "%v", err))
			}
		}
		for index, child := range node.Children {
			validateNode(child, fmt.Sprintf("%s.children[%d]", path, index), seen, errs)
		}

	case KindScroll:
		if node.ID < 0 {
			*errs = append(*errs, invalid(path, "negative scroll pane id %d", node.ID))
		}
		if node.ID == 0 {
			return
		}
		if previous, ok := seen[node.ID]; ok {
			*errs = append(*errs, invalid(path, "scroll pane id %d already used at %s", node.ID, previous))
			return
		}
		seen[node.ID] = path

	case KindInput:

	default:
		*errs = append(*errs, invalid(path, "unknown element type %q", node.Kind))
	}
}

func validateConstraint(constraint Constraint) error {
	switch constraint.Kind {
	case ConstraintMax, ConstraintMin:
		if constraint.Value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", constraint.Kind, constraint.Value)
		}
	case ConstraintPercentage:
		if constraint.Value < 0 || constraint.Value > 100 {
			return fmt.Errorf("percentage must be between 0 and 100, got %d", constraint.Value)
		}
	default:
		return fmt.Errorf("unknown constraint type %q", constraint.Kind)
	}
	return nil
}
