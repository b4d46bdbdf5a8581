// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package validate collects field rules and folds any failures into one
VALIDATION_ERROR.

Services run rules in stages: one chain per user-facing message, so the
first failing stage decides the top-level message while every broken field
of that stage is still listed in details.

	if err := validate.New().
		Required("site", site).
		Required("username", username).
		Fail("Site, username, and password are required"); err != nil {
		return nil, err
	}
*/
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/securepass/internal/platform/apperr"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// defaultMessage is used by [Validator.Err].
const defaultMessage = "Validation failed"

// Validator accumulates failures for a single stage. Not safe for concurrent use.
type Validator struct {
	failures []apperr.FieldError
}

// New starts an empty rule chain.
func New() *Validator {
	return &Validator{}
}

// # Rules

// Required fails on an empty or whitespace-only value.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.fail(field, "This field is required")
	}
	return v
}

// MinLen counts runes, so a six-character passphrase in any script passes.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.fail(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// MaxLen counts runes.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.fail(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MaxLenOptional is [Validator.MaxLen] for a field that may be absent.
func (v *Validator) MaxLenOptional(field string, value *string, max int) *Validator {
	if value == nil {
		return v
	}
	return v.MaxLen(field, *value, max)
}

// Email accepts a bare address only; "Ann <ann@example.com>" fails.
func (v *Validator) Email(field, value string) *Validator {
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		v.fail(field, "Must be a valid email address")
	}
	return v
}

// OneOf fails when value is not in allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, candidate := range allowed {
		if value == candidate {
			return v
		}
	}
	v.fail(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// # Results

// Failed reports whether any rule in the chain has failed.
func (v *Validator) Failed() bool {
	return len(v.failures) > 0
}

// Fail returns nil when every rule passed, otherwise a VALIDATION_ERROR with
// message at the top level and one detail per failing field.
func (v *Validator) Fail(message string) error {
	if !v.Failed() {
		return nil
	}
	return apperr.ValidationError(message, v.failures...)
}

// Err is [Validator.Fail] with a generic message.
func (v *Validator) Err() error {
	return v.Fail(defaultMessage)
}

func (v *Validator) fail(field, message string) {
	v.failures = append(v.failures, apperr.FieldError{Field: field, Message: message})
}
