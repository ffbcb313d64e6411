// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/tidwall/jsonc"
)

// Decode builds a Node from generic values: maps with string keys,
// slices, strings, and numbers, as produced by encoding/json or by
// converting a script table. The tree is structurally decoded but not
// validated; call Validate before using it.
//
// Constraints may be written as {"max": 10} or, positionally, as
// ["max", 10].
func Decode(value any) (Node, error) {
	return decodeNode(value, "layout")
}

// Parse decodes a JSONC document (JSON with comments and trailing
// commas) and validates the result.
func Parse(data []byte) (Node, error) {
	var value any
	if err := json.Unmarshal(jsonc.ToJSON(data), &value); err != nil {
		return Node{}, fmt.Errorf("parsing layout: %w", err)
	}
	node, err := Decode(value)
	if err != nil {
		return Node{}, err
	}
	if err := Validate(node); err != nil {
		return Node{}, err
	}
	return node, nil
}

// ReadFile reads and parses a JSONC layout file.
func ReadFile(path string) (Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Node{}, fmt.Errorf("reading %s: %w", path, err)
	}
	node, err := Parse(data)
	if err != nil {
		return Node{}, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, path, fmt.Sprintf(format, args...))
}

func decodeNode(value any, path string) (Node, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return Node{}, invalid(path, "expected a table, got %s", describe(value))
	}

	kindValue, ok := fields["type"]
	if !ok {
		return Node{}, invalid(path, "missing \"type\"")
	}
	kindName, ok := kindValue.(string)
	if !ok {
		return Node{}, invalid(path+".type", "expected a string, got %s", describe(kindValue))
	}

	node := Node{Kind: Kind(kindName)}
	switch node.Kind {
	case KindVStack, KindHStack:
		children, err := decodeList(fields, "children", path, decodeNode)
		if err != nil {
			return Node{}, err
		}
		constraints, err := decodeList(fields, "constraints", path, decodeConstraint)
		if err != nil {
			return Node{}, err
		}
		node.Children = children
		node.Constraints = constraints

	case KindScroll:
		if idValue, ok := fields["id"]; ok {
			id, err := integer(idValue, path+".id")
			if err != nil {
				return Node{}, err
			}
			node.ID = id
		}

	case KindInput:

	default:
		return Node{}, invalid(path+".type", "unknown element type %q", kindName)
	}
	return node, nil
}

// decodeList decodes an optional list field, applying decode to each
// item. A missing field yields nil.
func decodeList[T any](fields map[string]any, name, path string, decode func(any, string) (T, error)) ([]T, error) {
	value, ok := fields[name]
	if !ok {
		return nil, nil
	}
	fieldPath := path + "." + name
	items, ok := value.([]any)
	if !ok {
		return nil, invalid(fieldPath, "expected a list, got %s", describe(value))
	}
	result := make([]T, 0, len(items))
	for index, item := range items {
		decoded, err := decode(item, fmt.Sprintf("%s[%d]", fieldPath, index))
		if err != nil {
			return nil, err
		}
		result = append(result, decoded)
	}
	return result, nil
}

func decodeConstraint(value any, path string) (Constraint, error) {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) != 1 {
			return Constraint{}, invalid(path, "expected exactly one of max, min, percentage")
		}
		for key, amount := range typed {
			return makeConstraint(key, amount, path)
		}
	case []any:
		if len(typed) != 2 {
			return Constraint{}, invalid(path, "expected [type, value]")
		}
		key, ok := typed[0].(string)
		if !ok {
			return Constraint{}, invalid(path+"[0]", "expected a string, got %s", describe(typed[0]))
		}
		return makeConstraint(key, typed[1], path)
	}
	return Constraint{}, invalid(path, "expected a constraint, got %s", describe(value))
}

func makeConstraint(key string, amount any, path string) (Constraint, error) {
	kind := ConstraintKind(key)
	switch kind {
	case ConstraintMax, ConstraintMin, ConstraintPercentage:
	default:
		return Constraint{}, invalid(path, "unknown constraint type %q", key)
	}
	value, err := integer(amount, path+"."+key)
	if err != nil {
		return Constraint{}, err
	}
	return Constraint{Kind: kind, Value: value}, nil
}

// integer accepts any numeric representation of a whole number. JSON
// decoding yields float64; script tables may yield integers or floats.
func integer(value any, path string) (int, error) {
	switch typed := value.(type) {
	case int:
		return typed, nil
	case int64:
		return int(typed), nil
	case float64:
		if typed != math.Trunc(typed) || math.Abs(typed) > math.MaxInt32 {
			return 0, invalid(path, "expected a whole number, got %v", typed)
		}
		return int(typed), nil
	}
	return 0, invalid(path, "expected a number, got %s", describe(value))
}

func describe(value any) string {
	switch value.(type) {
	case nil:
		return "nothing"
	case map[string]any:
		return "a table"
	case []any:
		return "a list"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int, int64, float64:
		return "a number"
	}
	return fmt.Sprintf("%T", value)
}
