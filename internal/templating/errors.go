package templating

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrUndefinedReference is returned when a strict render references a
	// path or environment variable that does not exist.
	ErrUndefinedReference = errors.New("undefined reference")
	// ErrTemplate is returned for template syntax and execution failures.
	ErrTemplate = errors.New("template error")
)

// UndefinedReferenceError names the reference that could not be resolved.
type UndefinedReferenceError struct {
	Ref string
	Err error
}

func (e *UndefinedReferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("undefined reference %s: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("undefined reference %s", e.Ref)
}

func (e *UndefinedReferenceError) Unwrap() error {
	return e.Err
}

func (e *UndefinedReferenceError) Is(target error) bool {
	return target == ErrUndefinedReference
}

var (
	missingRefPatterns = []string{
		"map has no entry for key",
		"can't evaluate field",
		"nil pointer evaluating",
	}
	refLocation = regexp.MustCompile(`at <([^>]*)>`)
)

// classifyExecError turns text/template execution errors caused by missing
// paths into *UndefinedReferenceError.
func classifyExecError(err error) error {
	msg := err.Error()
	for _, pattern := range missingRefPatterns {
		if !strings.Contains(msg, pattern) {
			continue
		}
		ref := "(unknown)"
		if m := refLocation.FindStringSubmatch(msg); m != nil {
			ref = m[1]
		}
		return &UndefinedReferenceError{Ref: ref, Err: err}
	}
	return fmt.Errorf("%w: %w", ErrTemplate, err)
}
