package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every construction-time validation failure.
var ErrValidation = errors.New("validation error")

var (
	// ErrInvalidGeo reports coordinates outside the WGS-84 range.
	ErrInvalidGeo = fmt.Errorf("%w: invalid geo", ErrValidation)

	// ErrInvalidEnum reports a string that names no known enum value.
	ErrInvalidEnum = fmt.Errorf("%w: invalid enum value", ErrValidation)

	// ErrInvalidStatus reports an unrecognized status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidTransition reports a status change that would move backward.
	ErrInvalidTransition = errors.New("invalid status transition")
)
