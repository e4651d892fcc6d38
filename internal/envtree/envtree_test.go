package envtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/layercfg/internal/tree"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		env       map[string]string
		prefix    string
		delimiter string
		want      tree.Mapping
	}{
		{
			name:      "nested_and_flat",
			env:       map[string]string{"APP_b": "4", "APP_c__x": "alma", "OTHER": "skip"},
			prefix:    "APP_",
			delimiter: DefaultDelimiter,
			want: tree.Mapping{
				"b": tree.Scalar{V: "4"},
				"c": tree.Mapping{"x": tree.Scalar{V: "alma"}},
			},
		},
		{
			name:      "siblings_share_branch",
			env:       map[string]string{"APP_db__host": "h", "APP_db__port": "5432"},
			prefix:    "APP_",
			delimiter: DefaultDelimiter,
			want: tree.Mapping{
				"db": tree.Mapping{"host": tree.Scalar{V: "h"}, "port": tree.Scalar{V: "5432"}},
			},
		},
		{
			name:      "values_are_not_coerced",
			env:       map[string]string{"APP_n": "42", "APP_flag": "true"},
			prefix:    "APP_",
			delimiter: DefaultDelimiter,
			want:      tree.Mapping{"n": tree.Scalar{V: "42"}, "flag": tree.Scalar{V: "true"}},
		},
		{
			name:      "bare_prefix_ignored",
			env:       map[string]string{"APP_": "x"},
			prefix:    "APP_",
			delimiter: DefaultDelimiter,
			want:      tree.Mapping{},
		},
		{
			name:      "empty_delimiter_keeps_name",
			env:       map[string]string{"APP_a__b": "1"},
			prefix:    "APP_",
			delimiter: "",
			want:      tree.Mapping{"a__b": tree.Scalar{V: "1"}},
		},
		{
			name:      "custom_delimiter",
			env:       map[string]string{"APP_a.b.c": "1"},
			prefix:    "APP_",
			delimiter: ".",
			want:      tree.Mapping{"a": tree.Mapping{"b": tree.Mapping{"c": tree.Scalar{V: "1"}}}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Build(tc.env, tc.prefix, tc.delimiter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildLeafBranchCollision(t *testing.T) {
	t.Parallel()

	_, err := Build(map[string]string{"APP_a": "1", "APP_a__b": "2"}, "APP_", DefaultDelimiter)
	require.ErrorIs(t, err, tree.ErrConflict)
	assert.Contains(t, err.Error(), "APP_a__b")
}

func TestEnviron(t *testing.T) {
	t.Setenv("LAYERCFG_ENVTREE_TEST", "a=b")

	env := Environ()
	assert.Equal(t, "a=b", env["LAYERCFG_ENVTREE_TEST"])
}
