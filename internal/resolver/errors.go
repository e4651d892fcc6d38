package resolver

import "errors"

var (
	// ErrAlreadyResolved is returned when Resolve is called more than once.
	ErrAlreadyResolved = errors.New("configuration already resolved")
	// ErrPassLimit is returned when template syntax remains after the
	// configured maximum number of passes.
	ErrPassLimit = errors.New("configuration did not reach a fixed point")
)
