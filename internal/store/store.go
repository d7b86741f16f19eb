// Package store persists named slots of serialized state. A slot holds one
// JSON value (the cart lines, the wishlist ids, the session flags); absence
// of a slot is equivalent to an empty value, never an error.
package store

import (
	"context"
	"errors"
	"regexp"
)

// ErrInvalidSlot is returned for slot names outside the allowed alphabet.
var ErrInvalidSlot = errors.New("invalid slot name")

var slotNameRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// SlotStore is an interface for named-slot persistence.
// It abstracts the underlying store, allowing for different implementations
// (file per slot, in-memory, database table).
type SlotStore interface {
	// Load returns the raw payload of a slot, or nil when the slot is absent.
	Load(ctx context.Context, slot string) ([]byte, error)

	// Save replaces the payload of a slot, creating it if absent.
	Save(ctx context.Context, slot string, data []byte) error

	// Delete removes a slot. Deleting an absent slot is a no-op.
	Delete(ctx context.Context, slot string) error
}

// ValidSlot reports whether the slot name is acceptable to every backend.
func ValidSlot(slot string) bool {
	return slotNameRe.MatchString(slot)
}
