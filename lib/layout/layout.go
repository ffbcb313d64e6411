// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package layout describes how the client's screen is divided between
// transcript panes and the input line.
//
// A layout is a tree. Interior nodes are vertical or horizontal stacks
// that divide their area between ordered children according to sizing
// constraints. Leaves are scroll panes (transcripts, addressed by a
// numeric ID) and the single input pane. Scripts and layout files
// describe the tree as nested maps:
//
//	{
//	  "type": "vstack",
//	  "children": [{"type": "scroll", "id": 1}, {"type": "input"}],
//	  "constraints": [{"max": 9999}, {"min": 2}]
//	}
//
// The typical flow:
//
//  1. Decode (from script values) or ReadFile (JSONC on disk): → Node
//  2. Validate: one input pane, transcript pane 1 present, consistent
//     constraints
//  3. Split: divide a concrete number of cells between a stack's children
package layout

import "errors"

// ErrInvalid is wrapped by every decoding and validation error.
var ErrInvalid = errors.New("invalid layout")

// DefaultPaneID is the transcript pane that receives connection output
// and every print that does not name a pane. Every layout must contain
// it.
const DefaultPaneID = 1

// Kind discriminates layout nodes.
type Kind string

const (
	KindVStack Kind = "vstack"
	KindHStack Kind = "hstack"
	KindScroll Kind = "scroll"
	KindInput  Kind = "input"
)

// IsStack reports whether nodes of this kind have children.
func (kind Kind) IsStack() bool { return kind == KindVStack || kind == KindHStack }

// Node is one element of a layout tree. Children and Constraints are
// only meaningful for stacks, ID only for scroll panes.
type Node struct {
	Kind Kind

	// Children are laid out top to bottom (vstack) or left to right
	// (hstack).
	Children []Node

	// Constraints size the children, one per child. Empty means the
	// children share the space equally.
	Constraints []Constraint

	// ID addresses a scroll pane. Zero means the pane has no ID and can
	// only be reached through the layout, never by print requests.
	ID int
}

// ConstraintKind selects how a Constraint sizes its child.
type ConstraintKind string

const (
	// ConstraintMax lets the child grow up to Value cells.
	ConstraintMax ConstraintKind = "max"

	// ConstraintMin guarantees the child Value cells and lets it grow.
	ConstraintMin ConstraintKind = "min"

	// ConstraintPercentage gives the child Value percent of the stack.
	ConstraintPercentage ConstraintKind = "percentage"
)

// Constraint sizes one child of a stack.
type Constraint struct {
	Kind  ConstraintKind
	Value int
}

// Max returns a ConstraintMax of n cells.
func Max(n int) Constraint { return Constraint{Kind: ConstraintMax, Value: n} }

// Min returns a ConstraintMin of n cells.
func Min(n int) Constraint { return Constraint{Kind: ConstraintMin, Value: n} }

// Percentage returns a ConstraintPercentage of p percent.
func Percentage(p int) Constraint { return Constraint{Kind: ConstraintPercentage, Value: p} }

// Default returns the layout used until a script or layout file
// replaces it: the main transcript above a two-line input pane.
func Default() Node {
	return Node{
		Kind: KindVStack,
		Children: []Node{
			{Kind: KindScroll, ID: DefaultPaneID},
			{Kind: KindInput},
		},
		Constraints: []Constraint{Max(9999), Min(2)},
	}
}

// ScrollIDs returns the IDs of every scroll pane that has one, in
// depth-first order.
func (node Node) ScrollIDs() []int {
	var ids []int
	node.walk(func(current Node) {
		if current.Kind == KindScroll && current.ID != 0 {
			ids = append(ids, current.ID)
		}
	})
	return ids
}

// InputCount returns the number of input panes in the tree.
func (node Node) InputCount() int {
	count := 0
	node.walk(func(current Node) {
		if current.Kind == KindInput {
			count++
		}
	})
	return count
}

func (node Node) walk(visit func(Node)) {
	visit(node)
	for _, child := range node.Children {
		child.walk(visit)
	}
}
