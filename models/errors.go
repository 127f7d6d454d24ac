// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

// Error taxonomy. Boundary handlers dispatch on these with errors.Is:
// ErrNotFound is recovered locally, ErrNotAuthorized and ErrInvalidInput
// are surfaced to the acting user, everything else is logged and the
// current handler aborted.
var (
	ErrNotFound      = errors.New("not found")
	ErrNotAuthorized = errors.New("not authorized")
	ErrInvalidInput  = errors.New("invalid input")
)
