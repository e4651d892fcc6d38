package templating

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"text/template"
)

// MissingValue is what the lenient env filter and lenient renders produce
// for an undefined reference.
const MissingValue = "<no value>"

// renderState is scoped to one Render call.
type renderState struct {
	undefined *UndefinedReferenceError
}

func (e *Engine) funcMap(state *renderState) template.FuncMap {
	funcs := template.FuncMap{
		"toJson":       toJSON,
		"escapeQuotes": escapeQuotes,
		"indent":       indent,
		"until":        until,
		"default":      defaultValue,
		"env": func(name string) string {
			if value, ok := e.env[name]; ok {
				return value
			}
			return MissingValue
		},
		"requiredEnv": func(name string) (string, error) {
			if value, ok := e.env[name]; ok {
				return value, nil
			}
			state.undefined = &UndefinedReferenceError{Ref: "environment variable " + name}
			return "", state.undefined
		},
	}
	if e.strict {
		funcs["index"] = strictIndex(state)
	}
	for name, fn := range e.extra {
		funcs[name] = fn
	}
	return funcs
}

func toJSON(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("toJson: %w", err)
	}
	return string(out), nil
}

// escapeQuotes doubles single quotes so the value can be embedded in a
// single-quoted YAML scalar.
func escapeQuotes(v any) string {
	return strings.ReplaceAll(fmt.Sprint(v), "'", "''")
}

// indent prefixes every line but the first with n spaces, which lines a
// multi-line value up under a block scalar whose first line is already
// indented.
func indent(n int, v any) string {
	pad := strings.Repeat(" ", n)
	return strings.ReplaceAll(fmt.Sprint(v), "\n", "\n"+pad)
}

func until(n int) []int {
	if n < 0 {
		n = 0
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func defaultValue(fallback, v any) any {
	switch value := v.(type) {
	case nil:
		return fallback
	case string:
		if value == "" || value == MissingValue {
			return fallback
		}
	}
	return v
}

// strictIndex replaces the builtin index in strict renders. The builtin
// returns the zero value for a missing map key regardless of missingkey.
func strictIndex(state *renderState) func(item any, keys ...any) (any, error) {
	return func(item any, keys ...any) (any, error) {
		cur := reflect.ValueOf(item)
		for i, key := range keys {
			for cur.IsValid() && cur.Kind() == reflect.Interface {
				cur = cur.Elem()
			}
			if !cur.IsValid() {
				state.undefined = &UndefinedReferenceError{Ref: indexRef(keys[:i+1])}
				return nil, state.undefined
			}

			switch cur.Kind() {
			case reflect.Map:
				k := reflect.ValueOf(key)
				if !k.IsValid() {
					return nil, fmt.Errorf("index of nil key")
				}
				if !k.Type().AssignableTo(cur.Type().Key()) {
					if !k.Type().ConvertibleTo(cur.Type().Key()) {
						return nil, fmt.Errorf("index: %T is not a valid key for %s", key, cur.Type())
					}
					k = k.Convert(cur.Type().Key())
				}
				next := cur.MapIndex(k)
				if !next.IsValid() {
					state.undefined = &UndefinedReferenceError{Ref: indexRef(keys[:i+1])}
					return nil, state.undefined
				}
				cur = next
			case reflect.Slice, reflect.Array, reflect.String:
				n, ok := key.(int)
				if !ok {
					return nil, fmt.Errorf("index: cannot index %s with %T", cur.Type(), key)
				}
				if n < 0 || n >= cur.Len() {
					state.undefined = &UndefinedReferenceError{Ref: indexRef(keys[:i+1])}
					return nil, state.undefined
				}
				cur = cur.Index(n)
			default:
				return nil, fmt.Errorf("index: cannot index %s", cur.Type())
			}
		}
		if !cur.IsValid() {
			return nil, nil
		}
		return cur.Interface(), nil
	}
}

func indexRef(keys []any) string {
	parts := make([]string, len(keys))
	for i, key := range keys {
		if s, ok := key.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
			continue
		}
		parts[i] = fmt.Sprint(key)
	}
	return "index " + strings.Join(parts, " ")
}
