// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	if err := Validate(Default()); err != nil {
		t.Fatalf("Validate(Default()): %v", err)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	document := `{
		// Chat log beside the main transcript.
		"type": "vstack",
		"children": [
			{
				"type": "hstack",
				"children": [{"type": "scroll", "id": 1}, {"type": "scroll", "id": 2}],
				"constraints": [{"percentage": 70}, ["percentage", 30]],
			},
			{"type": "input"},
		],
		"constraints": [{"max": 9999}, {"min": 2}],
	}`

	node, err := Parse([]byte(document))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := Node{
		Kind: KindVStack,
		Children: []Node{
			{
				Kind:        KindHStack,
				Children:    []Node{{Kind: KindScroll, ID: 1}, {Kind: KindScroll, ID: 2}},
				Constraints: []Constraint{Percentage(70), Percentage(30)},
			},
			{Kind: KindInput},
		},
		Constraints: []Constraint{Max(9999), Min(2)},
	}
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
	if got := node.ScrollIDs(); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("ScrollIDs() = %v, want [1 2]", got)
	}
}

func TestDecodeAcceptsScriptNumbers(t *testing.T) {
	t.Parallel()
	node, err := Decode(map[string]any{
		"type":        "hstack",
		"children":    []any{map[string]any{"type": "scroll", "id": int64(1)}, map[string]any{"type": "input"}},
		"constraints": []any{map[string]any{"min": 10}, map[string]any{"max": float64(5)}},
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if node.Children[0].ID != 1 || node.Constraints[0] != Min(10) || node.Constraints[1] != Max(5) {
		t.Errorf("Decode = %+v", node)
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"not a table", "vstack", "layout: expected a table, got a string"},
		{"missing type", map[string]any{}, `layout: missing "type"`},
		{"unknown type", map[string]any{"type": "static"}, `layout.type: unknown element type "static"`},
		{
			"bad child",
			map[string]any{"type": "vstack", "children": []any{map[string]any{"type": "input"}, 3.0}},
			"layout.children[1]: expected a table, got a number",
		},
		{
			"unknown constraint",
			map[string]any{"type": "vstack", "constraints": []any{map[string]any{"ratio": 1.0}}},
			`layout.constraints[0]: unknown constraint type "ratio"`,
		},
		{
			"fractional constraint",
			map[string]any{"type": "vstack", "constraints": []any{[]any{"min", 1.5}}},
			"layout.constraints[0].min: expected a whole number, got 1.5",
		},
		{
			"string id",
			map[string]any{"type": "scroll", "id": "one"},
			"layout.id: expected a number, got a string",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(test.value)
			if err == nil {
				t.Fatal("Decode succeeded")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %q, want it to contain %q", err, test.want)
			}
		})
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()
	scroll1 := Node{Kind: KindScroll, ID: 1}
	input := Node{Kind: KindInput}

	tests := []struct {
		name string
		node Node
		want []string
	}{
		{
			"no input",
			Node{Kind: KindVStack, Children: []Node{scroll1}},
			[]string{"expected exactly one input pane, found 0"},
		},
		{
			"two inputs",
			Node{Kind: KindVStack, Children: []Node{scroll1, input, input}},
			[]string{"expected exactly one input pane, found 2"},
		},
		{
			"no default pane",
			Node{Kind: KindVStack, Children: []Node{{Kind: KindScroll, ID: 2}, input}},
			[]string{"missing scroll pane with id 1"},
		},
		{
			"duplicate id",
			Node{Kind: KindVStack, Children: []Node{scroll1, scroll1, input}},
			[]string{"layout.children[1]: scroll pane id 1 already used at layout.children[0]"},
		},
		{
			"empty stack",
			Node{Kind: KindHStack, Children: []Node{
				{Kind: KindVStack},
				{Kind: KindVStack, Children: []Node{scroll1, input}},
			}},
			[]string{"layout.children[0]: vstack has no children"},
		},
		{
			"constraint count",
			Node{Kind: KindVStack, Children: []Node{scroll1, input}, Constraints: []Constraint{Min(1)}},
			[]string{"layout: 1 constraints for 2 children"},
		},
		{
			"percentage range",
			Node{Kind: KindVStack, Children: []Node{scroll1, input}, Constraints: []Constraint{Percentage(150), Min(1)}},
			[]string{"layout.constraints[0]: percentage must be between 0 and 100, got 150"},
		},
		{
			"several problems reported together",
			Node{Kind: KindVStack, Children: []Node{{Kind: KindScroll, ID: 3}}, Constraints: []Constraint{Max(-1)}},
			[]string{"found 0", "missing scroll pane with id 1", "max must not be negative"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(test.node)
			if err == nil {
				t.Fatal("Validate succeeded")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
			for _, want := range test.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error = %q, want it to contain %q", err, want)
				}
			}
		})
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		total       int
		count       int
		constraints []Constraint
		want        []int
	}{
		{"default layout", 40, 2, []Constraint{Max(9999), Min(2)}, []int{38, 2}},
		{"default layout tiny", 1, 2, []Constraint{Max(9999), Min(2)}, []int{0, 1}},
		{"percentages", 100, 2, []Constraint{Percentage(70), Percentage(30)}, []int{70, 30}},
		{"percentage remainder to last", 10, 2, []Constraint{Percentage(33), Percentage(33)}, []int{3, 7}},
		{"max caps", 20, 2, []Constraint{Max(5), Max(5)}, []int{5, 15}},
		{"leftover to first min", 20, 3, []Constraint{Min(2), Max(3), Min(4)}, []int{13, 3, 4}},
		{"deficit shrinks from last", 5, 3, []Constraint{Min(3), Min(3), Min(3)}, []int{3, 2, 0}},
		{"unconstrained", 10, 3, nil, []int{3, 3, 4}},
		{"negative total", -5, 2, nil, []int{0, 0}},
	}

	for _, test := range tests {
		got := Split(test.total, test.count, test.constraints)
		if !slices.Equal(got, test.want) {
			t.Errorf("%s: Split = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()
	directory := t.TempDir()

	valid := filepath.Join(directory, "layout.jsonc")
	content := `{"type": "vstack", "children": [{"type": "scroll", "id": 1}, {"type": "input"}]}`
	if err := os.WriteFile(valid, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	node, err := ReadFile(valid)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if node.InputCount() != 1 {
		t.Errorf("InputCount() = %d, want 1", node.InputCount())
	}

	noInput := filepath.Join(directory, "no-input.jsonc")
	if err := os.WriteFile(noInput, []byte(`{"type": "scroll", "id": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(noInput); !errors.Is(err, ErrInvalid) {
		t.Errorf("ReadFile(no input) error = %v, want ErrInvalid", err)
	}

	if _, err := ReadFile(filepath.Join(directory, "missing.jsonc")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want os.ErrNotExist", err)
	}
}
