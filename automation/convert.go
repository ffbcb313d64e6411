// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// maxTableDepth bounds table conversion so a self-referencing table
// fails instead of recursing forever.
const maxTableDepth = 32

// fromLua converts a Lua value to the generic form layout.Decode
// accepts. A table whose keys are exactly 1..n becomes a []any;
// any other table becomes a map[string]any.
func fromLua(value lua.LValue, depth int) (any, error) {
	switch value := value.(type) {
	case lua.LString:
		return string(value), nil
	case lua.LNumber:
		return float64(value), nil
	case lua.LBool:
		return bool(value), nil
	case *lua.LTable:
		if depth >= maxTableDepth {
			return nil, fmt.Errorf("tables nested deeper than %d levels", maxTableDepth)
		}
		return tableFromLua(value, depth+1)
	}
	if value == lua.LNil {
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported %s value", value.Type())
}

func tableFromLua(table *lua.LTable, depth int) (any, error) {
	length := table.MaxN()
	entries := 0
	table.ForEach(func(lua.LValue, lua.LValue) { entries++ })

	if entries == length {
		list := make([]any, length)
		for index := range length {
			element, err := fromLua(table.RawGetInt(index+1), depth)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", index+1, err)
			}
			list[index] = element
		}
		return list, nil
	}

	fields := make(map[string]any, entries)
	var firstErr error
	table.ForEach(func(key, element lua.LValue) {
		if firstErr != nil {
			return
		}
		converted, err := fromLua(element, depth)
		if err != nil {
			firstErr = fmt.Errorf("%s: %w", key.String(), err)
			return
		}
		fields[key.String()] = converted
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return fields, nil
}
