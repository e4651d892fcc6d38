package tree

import (
	"fmt"
	"strings"
)

// KeyPolicy governs which keys an incoming tree may carry during a merge.
type KeyPolicy int

const (
	// PolicyAny places no constraint on keys.
	PolicyAny KeyPolicy = iota
	// PolicyExistent only allows keys that already exist in the base tree.
	PolicyExistent
	// PolicyNew only allows keys that are absent from the base tree.
	PolicyNew
)

// ParseKeyPolicy parses "any", "existent" or "new" (case-insensitive).
func ParseKeyPolicy(raw string) (KeyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "any", "":
		return PolicyAny, nil
	case "existent":
		return PolicyExistent, nil
	case "new":
		return PolicyNew, nil
	default:
		return PolicyAny, fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
	}
}

func (p KeyPolicy) String() string {
	switch p {
	case PolicyAny:
		return "any"
	case PolicyExistent:
		return "existent"
	case PolicyNew:
		return "new"
	default:
		return fmt.Sprintf("KeyPolicy(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p KeyPolicy) MarshalText() ([]byte, error) {
	switch p {
	case PolicyAny, PolicyExistent, PolicyNew:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *KeyPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseKeyPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
