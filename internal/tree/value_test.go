package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromNative(t *testing.T) {
	t.Parallel()

	got, err := MappingFromNative(map[string]any{
		"a": []any{1, "2", 3.5},
		"b": map[any]any{1: true, "x": nil},
	})
	require.NoError(t, err)
	require.Equal(t, Mapping{
		"a": Sequence{s(1), s("2"), s(3.5)},
		"b": Mapping{1: s(true), "x": s(nil)},
	}, got)

	empty, err := MappingFromNative(nil)
	require.NoError(t, err)
	require.Equal(t, Mapping{}, empty)

	_, err = MappingFromNative([]any{1})
	require.ErrorContains(t, err, "expected a mapping, got sequence")

	_, err = FromNative(map[string]any{"a": []int{1}})
	require.ErrorContains(t, err, `key "a"`)
}

func TestNativeConversions(t *testing.T) {
	t.Parallel()

	m := Mapping{
		1:   Mapping{"x": s("y")},
		"l": Sequence{Mapping{2: s(3)}},
	}

	require.Equal(t, map[any]any{
		1:   map[any]any{"x": "y"},
		"l": []any{map[any]any{2: 3}},
	}, m.Native())

	require.Equal(t, map[string]any{
		"1": map[string]any{"x": "y"},
		"l": []any{map[string]any{"2": 3}},
	}, m.StringKeyed())
}

func TestSortedKeysAndPaths(t *testing.T) {
	t.Parallel()

	keys := SortedKeys(Mapping{"b": s(1), "a": s(1), 2: s(1), 1: s(1)})
	require.Equal(t, []any{1, 2, "a", "b"}, keys)

	require.Equal(t, "(root)", FormatPath(nil))
	require.Equal(t, "a.1.b", FormatPath([]any{"a", 1, "b"}))
	require.Equal(t, "mapping", KindOf(Mapping{}))
	require.Equal(t, "scalar", KindOf(s(1)))
	require.True(t, IsMapping(Mapping{}))
	require.False(t, IsMapping(Sequence{}))
}
