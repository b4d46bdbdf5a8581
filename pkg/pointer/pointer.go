// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer builds and reads optional values: nullable columns (notes,
// password hash, Google id) and partial-update fields where absent and empty
// differ.
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, yielding the zero value for nil.
func Val[T any](p *T) T {
	if p != nil {
		return *p
	}
	var zero T
	return zero
}
