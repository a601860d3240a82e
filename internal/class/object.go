// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package class

import (
	"fmt"
	"reflect"
	"runtime"
	"unsafe"
	"weak"

	"github.com/dop251/goja"
)

type slotState uint8

const (
	attached slotState = iota + 1
	detached
)

// slot is the private storage of a scriptable object. It holds exactly one
// boxed value while attached; detaching happens once and is final.
//
// Slots live in the registry, keyed by the identity of the object that owns
// them, so scripts can neither read nor copy them. A slot must never
// reference its object, otherwise the object's cleanup could never run.
type slot struct {
	class    string
	typ      reflect.Type
	state    slotState
	value    any
	finalize func(any)
}

// detach empties the slot and returns the value it held.
func (s *slot) detach() any {
	v := s.value
	s.value = nil
	s.state = detached
	return v
}

// attach boxes value into obj's private slot. Once obj is collected the
// slot is queued for Sweep, which drops it and runs the class finalizer.
func attach[T any](r *Registry, obj *goja.Object, info *ClassInfo, value *T) error {
	key := weak.Make(obj)
	if _, exists := r.slots[key]; exists {
		return fmt.Errorf("failed to attach %s value: object already holds a value", info.Name)
	}
	s := &slot{
		class:    info.Name,
		typ:      info.Type,
		state:    attached,
		value:    value,
		finalize: info.finalize,
	}
	r.slots[key] = s
	q := r.pending
	runtime.AddCleanup(obj, func(c collected) { q.push(c) }, collected{key: key, slot: s})
	return nil
}

// slotOf returns obj's private slot, or nil if it never had one. Only the
// object a value was attached to has a slot; proxies and copies do not.
func (r *Registry) slotOf(obj *goja.Object) *slot {
	if obj == nil {
		return nil
	}
	return r.slots[weak.Make(obj)]
}

// Create allocates a new object of T's class holding value. Ownership of
// value moves to the object. T must be registered; Create panics otherwise.
func Create[T any](r *Registry, value T) *goja.Object {
	info := MustLookup[T](r)
	obj := r.vm.CreateObject(info.Prototype)
	if err := attach(r, obj, info, &value); err != nil {
		panic(err)
	}
	return obj
}

// Borrow returns the value held by obj without changing its ownership.
// Objects of a subclass lend the embedded T. The pointer stays valid after a
// later Take, but the object no longer exposes it.
func Borrow[T any](r *Registry, obj *goja.Object) (*T, error) {
	s, err := privateOf[T](r, obj)
	if err != nil {
		return nil, err
	}
	return upcast[T](s)
}

// Take moves the value out of obj and empties its slot, so every later
// Borrow or Take on obj fails with *MissingError. Taking a subclass object
// as an ancestor type returns the embedded ancestor and releases the rest.
func Take[T any](r *Registry, obj *goja.Object) (*T, error) {
	s, err := privateOf[T](r, obj)
	if err != nil {
		return nil, err
	}
	v, err := upcast[T](s)
	if err != nil {
		return nil, err
	}
	s.detach()
	r.logger.Debug("private value taken", "class", s.class, "as", className[T](r))
	return v, nil
}

// privateOf returns obj's attached slot if it can serve T.
func privateOf[T any](r *Registry, obj *goja.Object) (*slot, error) {
	name := className[T](r)
	s := r.slotOf(obj)
	if s == nil {
		info, ok := Lookup[T](r)
		if ok && obj != nil && hasPrototype(obj, info.Prototype) {
			return nil, &MissingError{Class: name}
		}
		return nil, &MismatchError{Class: name}
	}

	typ := reflect.TypeFor[T]()
	if s.typ != typ {
		want, ok := Lookup[T](r)
		have := r.classOf(s.typ)
		if !ok || have == nil || !have.Inherits(want) {
			return nil, &MismatchError{Class: name}
		}
	}
	if s.state != attached {
		return nil, &MissingError{Class: name}
	}
	return s, nil
}

// upcast returns the slot value as *T, following embedded parents.
func upcast[T any](s *slot) (*T, error) {
	if v, ok := s.value.(*T); ok {
		return v, nil
	}
	typ := reflect.TypeFor[T]()
	path, ok := embeddedPath(s.typ, typ)
	if !ok {
		return nil, &MismatchError{Class: typ.String()}
	}
	// The embedded field may be unexported, so its address is taken
	// directly instead of through Interface.
	field := reflect.ValueOf(s.value).Elem().FieldByIndex(path)
	return (*T)(unsafe.Pointer(field.UnsafeAddr())), nil
}

// ClassOf returns the class of the value obj was created with, whether or
// not that value is still attached.
func (r *Registry) ClassOf(obj *goja.Object) (*ClassInfo, bool) {
	s := r.slotOf(obj)
	if s == nil {
		return nil, false
	}
	info := r.classOf(s.typ)
	return info, info != nil
}
