// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package class

import (
	"fmt"
	"reflect"

	"github.com/dop251/goja"
)

// Flags control the attributes of an installed method or property.
// Zero Flags select the member's default: ConstantEnumerated for methods and
// constant values, Enumerate for accessors. Explicit makes the bits apply as
// given, so Explicit alone yields a writable, configurable, hidden member.
type Flags uint8

const (
	Enumerate Flags = 1 << iota
	ReadOnly
	Permanent
	Explicit

	ConstantEnumerated = Enumerate | ReadOnly | Permanent
)

// or returns f, or def when f is zero.
func (f Flags) or(def Flags) Flags {
	if f == 0 {
		return def
	}
	return f
}

func (f Flags) writable() goja.Flag     { return toFlag(f&ReadOnly == 0) }
func (f Flags) configurable() goja.Flag { return toFlag(f&Permanent == 0) }
func (f Flags) enumerable() goja.Flag   { return toFlag(f&Enumerate != 0) }

func toFlag(b bool) goja.Flag {
	if b {
		return goja.FLAG_TRUE
	}
	return goja.FLAG_FALSE
}

// Method describes a native function installed on a prototype or constructor.
type Method struct {
	Name   string
	Length int
	Call   func(call goja.FunctionCall) goja.Value
	Flags  Flags
}

// Property describes either an accessor (Get and/or Set) or a constant Value.
// Constant values must be a string, int, int32 or float64.
type Property struct {
	Name  string
	Get   func(call goja.FunctionCall) goja.Value
	Set   func(call goja.FunctionCall) goja.Value
	Value any
	Flags Flags
}

func (p Property) isAccessor() bool {
	return p.Get != nil || p.Set != nil
}

// Spec is the static description of a scriptable class backed by the Go type T.
type Spec[T any] struct {
	// Name is the JS-visible class name.
	Name string

	// Parent is the Go type of the parent class, or nil for a root class.
	// T must embed Parent so inherited native members can borrow it.
	Parent reflect.Type

	// Construct builds the host value for `new Name(...)`.
	Construct func(call goja.ConstructorCall) (T, error)

	// Length is the constructor arity reported to scripts.
	Length int

	Methods          []Method
	Properties       []Property
	StaticMethods    []Method
	StaticProperties []Property

	// Finalize, if set, runs on the engine goroutine during Registry.Sweep
	// for objects that became unreachable with their value still attached.
	Finalize func(*T)
}

func (s *Spec[T]) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: class name cannot be empty", ErrInvalidSpec)
	}
	if s.Construct == nil {
		return fmt.Errorf("%w: %s: constructor function is required", ErrInvalidSpec, s.Name)
	}
	if s.Length < 0 {
		return fmt.Errorf("%w: %s: negative constructor length", ErrInvalidSpec, s.Name)
	}
	if s.Parent != nil {
		if _, ok := embeddedPath(reflect.TypeFor[T](), s.Parent); !ok {
			return fmt.Errorf("%w: %s: %s does not embed parent %s",
				ErrInvalidSpec, s.Name, reflect.TypeFor[T](), s.Parent)
		}
	}
	for _, tbl := range [][]Method{s.Methods, s.StaticMethods} {
		for _, m := range tbl {
			if m.Name == "" || m.Call == nil {
				return fmt.Errorf("%w: %s: method needs a name and a function", ErrInvalidSpec, s.Name)
			}
		}
	}
	for _, tbl := range [][]Property{s.Properties, s.StaticProperties} {
		for _, p := range tbl {
			if err := p.validate(); err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrInvalidSpec, s.Name, p.Name, err)
			}
		}
	}
	return nil
}

func (p Property) validate() error {
	if p.Name == "" {
		return fmt.Errorf("property name cannot be empty")
	}
	if p.isAccessor() {
		if p.Value != nil {
			return fmt.Errorf("property cannot have both accessors and a value")
		}
		return nil
	}
	switch p.Value.(type) {
	case string, int, int32, float64:
		return nil
	case nil:
		return fmt.Errorf("property needs accessors or a value")
	default:
		return fmt.Errorf("unsupported constant type %T", p.Value)
	}
}

// embeddedPath finds the field index path of an anonymous field of type to
// inside from, searching embedded structs depth first.
func embeddedPath(from, to reflect.Type) ([]int, bool) {
	if from.Kind() != reflect.Struct {
		return nil, false
	}
	for i := 0; i < from.NumField(); i++ {
		f := from.Field(i)
		if !f.Anonymous {
			continue
		}
		if f.Type == to {
			return []int{i}, true
		}
		if sub, ok := embeddedPath(f.Type, to); ok {
			return append([]int{i}, sub...), true
		}
	}
	return nil, false
}

// install defines the methods and properties on obj.
func install(vm *goja.Runtime, obj *goja.Object, methods []Method, props []Property) error {
	for _, m := range methods {
		fn, err := newFunction(vm, m.Name, m.Length, m.Call)
		if err != nil {
			return err
		}
		f := m.Flags.or(ConstantEnumerated)
		if err := obj.DefineDataProperty(m.Name, fn, f.writable(), f.configurable(), f.enumerable()); err != nil {
			return fmt.Errorf("failed to define method %s: %w", m.Name, err)
		}
	}

	for _, p := range props {
		if !p.isAccessor() {
			f := p.Flags.or(ConstantEnumerated)
			if err := obj.DefineDataProperty(p.Name, vm.ToValue(p.Value), f.writable(), f.configurable(), f.enumerable()); err != nil {
				return fmt.Errorf("failed to define property %s: %w", p.Name, err)
			}
			continue
		}

		var getter, setter goja.Value
		if p.Get != nil {
			fn, err := newFunction(vm, "get "+p.Name, 0, p.Get)
			if err != nil {
				return err
			}
			getter = fn
		}
		if p.Set != nil {
			fn, err := newFunction(vm, "set "+p.Name, 1, p.Set)
			if err != nil {
				return err
			}
			setter = fn
		}
		f := p.Flags.or(Enumerate)
		if err := obj.DefineAccessorProperty(p.Name, getter, setter, f.configurable(), f.enumerable()); err != nil {
			return fmt.Errorf("failed to define accessor %s: %w", p.Name, err)
		}
	}
	return nil
}

// newFunction wraps fn as a JS function with the given name and length.
func newFunction(vm *goja.Runtime, name string, length int, fn func(goja.FunctionCall) goja.Value) (*goja.Object, error) {
	obj := vm.ToValue(fn).(*goja.Object)
	if err := setNameAndLength(vm, obj, name, length); err != nil {
		return nil, err
	}
	return obj, nil
}

// setNameAndLength overrides the reflected Go name and arity of a native function.
func setNameAndLength(vm *goja.Runtime, fn *goja.Object, name string, length int) error {
	if err := fn.DefineDataProperty("name", vm.ToValue(name), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		return fmt.Errorf("failed to name function %s: %w", name, err)
	}
	if err := fn.DefineDataProperty("length", vm.ToValue(length), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		return fmt.Errorf("failed to set length of %s: %w", name, err)
	}
	return nil
}
