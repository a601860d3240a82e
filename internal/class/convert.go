// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package class

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// Outcome is the result of converting a script value to a Go value.
// OK=false is a soft failure: the value had the wrong shape and the caller
// may try another conversion. Reason describes the mismatch.
type Outcome[T any] struct {
	Value  T
	OK     bool
	Reason string
}

// Success returns a successful outcome holding v.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, OK: true}
}

// Failure returns a soft failure with the given reason.
func Failure[T any](reason string) Outcome[T] {
	return Outcome[T]{Reason: reason}
}

// Cloner lets a class control how FromValue copies its value.
// Types without it are copied by assignment.
type Cloner[T any] interface {
	Clone() T
}

// InstanceOf reports whether v is an object whose prototype chain contains
// T's prototype. Instances of subclasses are instances of every ancestor.
func InstanceOf[T any](r *Registry, v goja.Value) bool {
	info, ok := Lookup[T](r)
	if !ok {
		return false
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return false
	}
	return hasPrototype(obj, info.Prototype)
}

// FromValue converts v to a copy of the T it carries.
//
// Non-objects and objects of other classes produce a soft failure and leave
// v untouched. An instance of T whose private value is gone returns an error;
// that is an internal misuse and callers should throw it (see Throw).
func FromValue[T any](r *Registry, v goja.Value) (Outcome[T], error) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return Failure[T]("Value is not an object"), nil
	}
	if !InstanceOf[T](r, obj) {
		return Failure[T](fmt.Sprintf("Object is not a %s", className[T](r))), nil
	}

	p, err := Borrow[T](r, obj)
	if err != nil {
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			return Failure[T](mismatch.Error()), nil
		}
		return Outcome[T]{}, err
	}
	return Success(clone(p)), nil
}

func clone[T any](p *T) T {
	if c, ok := any(p).(Cloner[T]); ok {
		return c.Clone()
	}
	if c, ok := any(*p).(Cloner[T]); ok {
		return c.Clone()
	}
	return *p
}

// Throw raises err in the runtime as a JS Error. It never returns and must
// only be called from native functions invoked by the runtime.
func (r *Registry) Throw(err error) {
	panic(r.vm.NewGoError(err))
}

// Must returns the outcome's value or throws: a JS TypeError carrying the
// reason for a soft failure, a JS Error for err.
func Must[T any](r *Registry, out Outcome[T], err error) T {
	if err != nil {
		r.Throw(err)
	}
	if !out.OK {
		panic(r.vm.NewTypeError("%s", out.Reason))
	}
	return out.Value
}
