// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrConfiguration indicates invalid or missing construction-time configuration.
var ErrConfiguration = errors.New("invalid configuration")

// ErrValidation indicates a request failed input validation.
var ErrValidation = errors.New("validation failed")

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")
