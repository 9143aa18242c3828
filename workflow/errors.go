package workflow

import "errors"

var (
	// ErrAuthRequired: owner-scoped operation without an authenticated user.
	ErrAuthRequired = errors.New("user must be authenticated")

	// ErrNotFound covers both a missing diary and a diary owned by someone
	// else. The two cases are intentionally indistinguishable so non-owners
	// cannot probe for existence.
	ErrNotFound = errors.New("diary not found")

	ErrValidation = errors.New("validation error")
)
