package envtree

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/eugenenazirov/layercfg/internal/tree"
)

// DefaultDelimiter separates nesting levels in variable names, e.g. APP_db__host.
const DefaultDelimiter = "__"

// Build converts the variables of env whose name starts with prefix into a
// nested mapping. The prefix is stripped and the remainder is split on
// delimiter; every segment but the last becomes a mapping and the last one
// holds the raw string value.
//
// Variables are applied in name order by merging one single-path tree per
// variable, so a variable that is both a leaf and a branch of another one
// fails with a *tree.ConflictError. The collision is reported by Build
// itself, before the tree is merged into any configuration.
func Build(env map[string]string, prefix, delimiter string) (tree.Mapping, error) {
	names := make([]string, 0, len(env))
	for name := range env {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	result := tree.Mapping{}
	for _, name := range names {
		segments := split(strings.TrimPrefix(name, prefix), delimiter)

		var node tree.Value = tree.Scalar{V: env[name]}
		for i := len(segments) - 1; i >= 0; i-- {
			node = tree.Mapping{segments[i]: node}
		}

		if _, err := tree.Merge(result, node.(tree.Mapping), tree.PolicyAny); err != nil {
			return nil, fmt.Errorf("environment variable %s: %w", name, err)
		}
	}
	return result, nil
}

func split(name, delimiter string) []string {
	if delimiter == "" {
		return []string{name}
	}
	return strings.Split(name, delimiter)
}

// Environ snapshots the process environment.
func Environ() map[string]string {
	vars := os.Environ()
	out := make(map[string]string, len(vars))
	for _, kv := range vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[name] = value
	}
	return out
}
