package tree

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Value is a node of a configuration tree. It is implemented by Scalar,
// Sequence and Mapping only.
type Value interface {
	isValue()
}

// Scalar holds a leaf value: string, int, float64, bool, nil or any other
// comparable value produced by the document parser.
type Scalar struct {
	V any
}

// Sequence is an ordered list of values.
type Sequence []Value

// Mapping associates scalar keys with values. Keys are plain Go values so
// numeric and boolean keys survive a round trip through the parser.
type Mapping map[any]Value

func (Scalar) isValue()   {}
func (Sequence) isValue() {}
func (Mapping) isValue()  {}

// String renders the scalar the way it would appear in a template.
func (s Scalar) String() string {
	return fmt.Sprint(s.V)
}

// IsMapping reports whether v is a Mapping.
func IsMapping(v Value) bool {
	_, ok := v.(Mapping)
	return ok
}

// FromNative converts a decoded document value (maps, slices and scalars as
// produced by yaml.v3 or encoding/json) into a Value.
func FromNative(in any) (Value, error) {
	switch v := in.(type) {
	case Value:
		return v, nil
	case map[string]any:
		out := make(Mapping, len(v))
		for key, item := range v {
			converted, err := FromNative(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = converted
		}
		return out, nil
	case map[any]any:
		out := make(Mapping, len(v))
		for key, item := range v {
			if key != nil && !reflect.TypeOf(key).Comparable() {
				return nil, fmt.Errorf("unsupported mapping key of type %T", key)
			}
			converted, err := FromNative(item)
			if err != nil {
				return nil, fmt.Errorf("key %v: %w", key, err)
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make(Sequence, 0, len(v))
		for i, item := range v {
			converted, err := FromNative(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, converted)
		}
		return out, nil
	default:
		if in != nil && !reflect.TypeOf(in).Comparable() {
			return nil, fmt.Errorf("unsupported value of type %T", in)
		}
		return Scalar{V: in}, nil
	}
}

// MappingFromNative converts a decoded document into a Mapping. A nil
// document yields an empty mapping.
func MappingFromNative(in any) (Mapping, error) {
	if in == nil {
		return Mapping{}, nil
	}
	v, err := FromNative(in)
	if err != nil {
		return nil, err
	}
	m, ok := v.(Mapping)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %s", KindOf(v))
	}
	return m, nil
}

// Native returns the mapping as nested map[any]any, []any and scalars,
// preserving the original key types.
func (m Mapping) Native() map[any]any {
	return toNative(m, false).(map[any]any)
}

// StringKeyed returns the mapping as nested map[string]any, []any and
// scalars. Keys are formatted with fmt.Sprint.
func (m Mapping) StringKeyed() map[string]any {
	return toNative(m, true).(map[string]any)
}

func toNative(v Value, stringKeys bool) any {
	switch node := v.(type) {
	case Mapping:
		if stringKeys {
			out := make(map[string]any, len(node))
			for key, item := range node {
				out[fmt.Sprint(key)] = toNative(item, true)
			}
			return out
		}
		out := make(map[any]any, len(node))
		for key, item := range node {
			out[key] = toNative(item, false)
		}
		return out
	case Sequence:
		out := make([]any, len(node))
		for i, item := range node {
			out[i] = toNative(item, stringKeys)
		}
		return out
	case Scalar:
		return node.V
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("tree: unexpected value type %T", v))
	}
}

// KindOf names the shape of v for diagnostics.
func KindOf(v Value) string {
	switch v.(type) {
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	case Scalar:
		return "scalar"
	default:
		return "nil"
	}
}

// SortedKeys returns the keys of m in a stable order: grouped by type name,
// then by formatted value.
func SortedKeys(m Mapping) []any {
	keys := make([]any, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, tj := fmt.Sprintf("%T", keys[i]), fmt.Sprintf("%T", keys[j])
		if ti != tj {
			return ti < tj
		}
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}

// FormatPath joins a key path with dots; the root is rendered as "(root)".
func FormatPath(path []any) string {
	if len(path) == 0 {
		return "(root)"
	}
	parts := make([]string, len(path))
	for i, key := range path {
		parts[i] = fmt.Sprint(key)
	}
	return strings.Join(parts, ".")
}
