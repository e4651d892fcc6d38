package tree

import "fmt"

// Merge merges incoming into base in place and returns base.
//
// Keys present on both sides whose values are both mappings are merged
// recursively under the same policy. A key where only one side is a mapping
// fails with a *ConflictError. Every other key is checked against policy and
// then replaces the base value wholesale. A nil base is replaced with a new
// mapping.
func Merge(base, incoming Mapping, policy KeyPolicy) (Mapping, error) {
	switch policy {
	case PolicyAny, PolicyExistent, PolicyNew:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(policy))
	}
	if base == nil {
		base = Mapping{}
	}
	if err := mergeInto(base, incoming, policy, nil); err != nil {
		return nil, err
	}
	return base, nil
}

func mergeInto(base, incoming Mapping, policy KeyPolicy, path []any) error {
	for _, key := range SortedKeys(incoming) {
		next := incoming[key]
		current, exists := base[key]
		keyPath := append(path[:len(path):len(path)], key)

		if exists {
			baseMap, baseIsMap := current.(Mapping)
			nextMap, nextIsMap := next.(Mapping)
			if baseIsMap && nextIsMap {
				if err := mergeInto(baseMap, nextMap, policy, keyPath); err != nil {
					return err
				}
				continue
			}
			if baseIsMap != nextIsMap {
				return &ConflictError{Path: keyPath, Base: current, Incoming: next}
			}
		}

		switch policy {
		case PolicyExistent:
			if !exists {
				return &PolicyViolationError{Path: keyPath, Policy: policy}
			}
		case PolicyNew:
			if exists {
				return &PolicyViolationError{Path: keyPath, Policy: policy}
			}
		case PolicyAny:
		}
		base[key] = next
	}
	return nil
}
