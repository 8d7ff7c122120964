// Package store is the data-access layer. Every method takes a context,
// runs parameterized queries through gorm and returns sentinel errors the
// handlers can map to user-facing outcomes.
package store

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrNoItems   = errors.New("order needs at least one line item")
	ErrItemInUse = errors.New("item is referenced by existing orders")
)
