// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package class

import (
	"errors"
	"fmt"
)

var (
	// ErrUninitialised is the panic value (wrapped) when a class is used before
	// it was registered on the runtime's registry.
	ErrUninitialised = errors.New("uninitialised class")

	ErrAlreadyRegistered   = errors.New("class already registered")
	ErrParentNotRegistered = errors.New("parent class not registered")
	ErrInvalidSpec         = errors.New("invalid class spec")

	// ErrPrivateMissing matches any *MissingError.
	ErrPrivateMissing = errors.New("private value missing")

	// ErrClassMismatch matches any *MismatchError.
	ErrClassMismatch = errors.New("class mismatch")
)

// MissingError is returned by Borrow and Take when the object's private slot
// is empty: the value was already taken, finalized, or never attached.
type MissingError struct {
	Class string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("Could not get private value in %s. It may have been destroyed.", e.Class)
}

// Is reports whether target is ErrPrivateMissing.
func (e *MissingError) Is(target error) bool {
	return target == ErrPrivateMissing
}

// MismatchError is returned when an object's private value belongs to an
// unrelated class.
type MismatchError struct {
	Class string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("Object is not a %s", e.Class)
}

// Is reports whether target is ErrClassMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrClassMismatch
}
