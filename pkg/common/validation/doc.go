// Package validation provides common validation utilities for configuration
// parameters across the poolman module.
//
// The helpers return *errors.ValidationError values so callers can match
// them with errors.Is(err, errors.ErrInvalidConfiguration) regardless of
// which component rejected the input.
package validation
