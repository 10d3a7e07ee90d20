// SPDX-License-Identifier: MIT

package plan

import (
	"errors"
	"fmt"
)

// ErrValidation marks a plan rejected before it reaches the service.
var ErrValidation = errors.New("plan: validation failed")

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plan: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
