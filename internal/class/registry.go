// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package class exposes Go types as constructible JavaScript classes on a
// goja runtime.
//
// Each runtime owns one Registry. A Go type is registered once with a Spec;
// afterwards objects of that class carry the Go value in a hidden private
// slot that native code can Borrow, Take (exactly once) or convert back with
// FromValue. The registry, the runtime and every object on it must only be
// used from the goroutine that drives the runtime.
package class

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"weak"

	"github.com/dop251/goja"
)

// ClassInfo is the installed form of a Spec. It is immutable once registered.
type ClassInfo struct {
	Name        string
	Type        reflect.Type
	Constructor *goja.Object
	Prototype   *goja.Object
	Parent      *ClassInfo

	finalize func(any)
}

// Inherits reports whether info is other or one of its descendants.
func (info *ClassInfo) Inherits(other *ClassInfo) bool {
	for c := info; c != nil; c = c.Parent {
		if c == other {
			return true
		}
	}
	return false
}

// Registry maps Go types to the classes installed on one goja runtime.
// Registered constructors and prototypes stay reachable for as long as the
// registry is.
type Registry struct {
	vm      *goja.Runtime
	classes map[reflect.Type]*ClassInfo
	slots   map[weak.Pointer[goja.Object]]*slot
	pending *cleanupQueue
	logger  *slog.Logger
}

// NewRegistry creates an empty registry bound to vm.
func NewRegistry(vm *goja.Runtime) *Registry {
	return &Registry{
		vm:      vm,
		classes: make(map[reflect.Type]*ClassInfo),
		slots:   make(map[weak.Pointer[goja.Object]]*slot),
		pending: &cleanupQueue{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Runtime returns the runtime the registry is bound to.
func (r *Registry) Runtime() *goja.Runtime {
	return r.vm
}

// SetLogger sets the logger used for debug tracing. A nil logger discards.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r.logger = l
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	return len(r.classes)
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.classes))
	for _, info := range r.classes {
		names = append(names, info.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the class registered for T. It never mutates the registry.
func Lookup[T any](r *Registry) (*ClassInfo, bool) {
	info, ok := r.classes[reflect.TypeFor[T]()]
	return info, ok
}

// MustLookup returns the class registered for T and panics if there is none.
// A miss means the class was used before its registration ran.
func MustLookup[T any](r *Registry) *ClassInfo {
	info, ok := Lookup[T](r)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUninitialised, reflect.TypeFor[T]()))
	}
	return info
}

// Register installs spec as a global class on the registry's runtime.
func Register[T any](r *Registry, spec Spec[T]) (*ClassInfo, error) {
	return RegisterOn(r, r.vm.GlobalObject(), spec)
}

// RegisterOn installs spec and binds its constructor as a property of target.
// A nil target registers the class without binding it anywhere.
//
// Each Go type can be registered once per registry; a second attempt fails
// with ErrAlreadyRegistered and leaves the first class in place.
func RegisterOn[T any](r *Registry, target *goja.Object, spec Spec[T]) (*ClassInfo, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	typ := reflect.TypeFor[T]()
	if existing, ok := r.classes[typ]; ok {
		return nil, fmt.Errorf("%w: %s (as %s)", ErrAlreadyRegistered, typ, existing.Name)
	}

	var parent *ClassInfo
	var parentProto *goja.Object
	if spec.Parent != nil {
		p, ok := r.classes[spec.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: %s extends %s", ErrParentNotRegistered, spec.Name, spec.Parent)
		}
		parent = p
		parentProto = p.Prototype
	} else {
		parentProto = r.vm.NewObject()
	}

	info := &ClassInfo{Name: spec.Name, Type: typ, Parent: parent}
	if spec.Finalize != nil {
		finalize := spec.Finalize
		info.finalize = func(v any) { finalize(v.(*T)) }
	}

	ctor := r.vm.ToValue(constructorFor(r, info, spec)).(*goja.Object)
	if err := setNameAndLength(r.vm, ctor, spec.Name, spec.Length); err != nil {
		return nil, err
	}

	proto, _ := ctor.Get("prototype").(*goja.Object)
	if proto == nil {
		proto = r.vm.NewObject()
		if err := ctor.DefineDataProperty("prototype", proto, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE); err != nil {
			return nil, fmt.Errorf("failed to define %s.prototype: %w", spec.Name, err)
		}
		if err := proto.DefineDataProperty("constructor", ctor, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			return nil, fmt.Errorf("failed to define %s.prototype.constructor: %w", spec.Name, err)
		}
	}
	if err := proto.SetPrototype(parentProto); err != nil {
		return nil, fmt.Errorf("failed to link %s.prototype: %w", spec.Name, err)
	}
	if parent != nil {
		// Static members are inherited the same way ES classes do it.
		if err := ctor.SetPrototype(parent.Constructor); err != nil {
			return nil, fmt.Errorf("failed to link %s to %s: %w", spec.Name, parent.Name, err)
		}
	}

	if err := install(r.vm, proto, spec.Methods, spec.Properties); err != nil {
		return nil, fmt.Errorf("class %s: %w", spec.Name, err)
	}
	if err := install(r.vm, ctor, spec.StaticMethods, spec.StaticProperties); err != nil {
		return nil, fmt.Errorf("class %s (static): %w", spec.Name, err)
	}

	if target != nil {
		if err := target.DefineDataProperty(spec.Name, ctor, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			return nil, fmt.Errorf("failed to bind class %s: %w", spec.Name, err)
		}
	}

	info.Constructor = ctor
	info.Prototype = proto
	r.classes[typ] = info

	parentName := ""
	if parent != nil {
		parentName = parent.Name
	}
	r.logger.Debug("class registered", "class", spec.Name, "type", typ.String(), "parent", parentName)
	return info, nil
}

// constructorFor builds the native constructor for spec. It runs Construct,
// then attaches the value to `this` when `this` is a fresh instance of the
// class (or a script subclass), and to a new object otherwise.
func constructorFor[T any](r *Registry, info *ClassInfo, spec Spec[T]) func(goja.ConstructorCall) *goja.Object {
	return func(call goja.ConstructorCall) *goja.Object {
		value, err := spec.Construct(call)
		if err != nil {
			panic(r.vm.NewGoError(err))
		}

		this := call.This
		if this != nil && call.NewTarget != nil {
			if p, ok := call.NewTarget.Get("prototype").(*goja.Object); ok && this.Prototype() != p {
				_ = this.SetPrototype(p)
			}
		}
		if this == nil || !hasPrototype(this, info.Prototype) || r.slotOf(this) != nil {
			this = r.vm.CreateObject(info.Prototype)
		}

		if err := attach(r, this, info, &value); err != nil {
			panic(r.vm.NewGoError(err))
		}
		return this
	}
}

// hasPrototype reports whether proto is on obj's prototype chain.
func hasPrototype(obj, proto *goja.Object) bool {
	for p := obj.Prototype(); p != nil; p = p.Prototype() {
		if p == proto {
			return true
		}
	}
	return false
}

// classOf returns the registered class of a slot's value type.
func (r *Registry) classOf(t reflect.Type) *ClassInfo {
	return r.classes[t]
}

// className names T for error messages, preferring the registered JS name.
func className[T any](r *Registry) string {
	if info, ok := Lookup[T](r); ok {
		return info.Name
	}
	return reflect.TypeFor[T]().String()
}

// LookupName returns the class registered under the JS name.
func (r *Registry) LookupName(name string) (*ClassInfo, bool) {
	for _, info := range r.classes {
		if info.Name == name {
			return info, true
		}
	}
	return nil, false
}
