// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	lua "github.com/yuin/gopher-lua"
)

// evaluate runs `return <expression>` and returns the result.
func evaluate(t *testing.T, state *lua.LState, expression string) lua.LValue {
	t.Helper()
	if err := state.DoString("return " + expression); err != nil {
		t.Fatalf("evaluating %s: %v", expression, err)
	}
	value := state.Get(-1)
	state.Pop(1)
	return value
}

func TestFromLua(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		expression string
		want       any
	}{
		{"string", `"scroll"`, "scroll"},
		{"number", `42`, float64(42)},
		{"boolean", `true`, true},
		{"nil", `nil`, nil},
		{"list", `{ "max", 10 }`, []any{"max", float64(10)}},
		{"empty table", `{}`, []any{}},
		{"record", `{ type = "scroll", id = 2 }`, map[string]any{"type": "scroll", "id": float64(2)}},
		{"sparse list is a record", `{ [1] = "a", [3] = "c" }`, map[string]any{"1": "a", "3": "c"}},
		{
			"nested",
			`{ type = "vstack", children = { { type = "input" } } }`,
			map[string]any{"type": "vstack", "children": []any{map[string]any{"type": "input"}}},
		},
	}

	state := lua.NewState()
	defer state.Close()
	for _, test := range tests {
		got, err := fromLua(evaluate(t, state, test.expression), 0)
		if err != nil {
			t.Errorf("%s: fromLua: %v", test.name, err)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestFromLuaRejects(t *testing.T) {
	t.Parallel()
	state := lua.NewState()
	defer state.Close()

	if _, err := fromLua(evaluate(t, state, `{ f = print }`), 0); err == nil || !strings.Contains(err.Error(), "function") {
		t.Errorf("function value: error = %v, want unsupported function", err)
	}

	cyclic := evaluate(t, state, `(function() local t = { type = "vstack" }; t.children = { t }; return t end)()`)
	if _, err := fromLua(cyclic, 0); err == nil || !strings.Contains(err.Error(), "nested deeper") {
		t.Errorf("cyclic table: error = %v, want depth limit", err)
	}
}
