package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when a colliding key holds a mapping on one side only.
	ErrConflict = errors.New("conflicting value shapes")
	// ErrPolicyViolation is returned when a merge breaks its key policy.
	ErrPolicyViolation = errors.New("key policy violation")
	// ErrUnknownPolicy is returned for key policies outside any/existent/new.
	ErrUnknownPolicy = errors.New("unknown key policy")
)

// ConflictError reports a key whose base and incoming values disagree on
// being a mapping.
type ConflictError struct {
	Path     []any
	Base     Value
	Incoming Value
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict at %s: only one of %s and %s is a mapping",
		FormatPath(e.Path), describe(e.Base), describe(e.Incoming))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// PolicyViolationError reports a key rejected by the merge's KeyPolicy.
type PolicyViolationError struct {
	Path   []any
	Policy KeyPolicy
}

func (e *PolicyViolationError) Error() string {
	switch e.Policy {
	case PolicyExistent:
		return fmt.Sprintf("key policy %s forbids new key %s", e.Policy, FormatPath(e.Path))
	case PolicyNew:
		return fmt.Sprintf("key policy %s forbids existing key %s", e.Policy, FormatPath(e.Path))
	default:
		return fmt.Sprintf("key policy %s rejected key %s", e.Policy, FormatPath(e.Path))
	}
}

func (e *PolicyViolationError) Is(target error) bool {
	return target == ErrPolicyViolation
}

func describe(v Value) string {
	switch node := v.(type) {
	case Scalar:
		return fmt.Sprintf("%q", node.String())
	case Mapping:
		return fmt.Sprintf("mapping(%d keys)", len(node))
	case Sequence:
		return fmt.Sprintf("sequence(%d items)", len(node))
	default:
		return "nil"
	}
}
