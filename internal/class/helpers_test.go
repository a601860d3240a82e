// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package class

import (
	"reflect"
	"testing"

	"github.com/dop251/goja"
)

type point struct {
	X, Y float64
}

type point3 struct {
	point
	Z float64
}

type label struct {
	Text string
}

type tagged struct {
	Tags []string
}

func (t tagged) Clone() tagged {
	return tagged{Tags: append([]string(nil), t.Tags...)}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(goja.New())
}

func thisObject(call goja.FunctionCall) *goja.Object {
	obj, _ := call.This.(*goja.Object)
	return obj
}

func pointSpec(r *Registry) Spec[point] {
	borrow := func(call goja.FunctionCall) *point {
		p, err := Borrow[point](r, thisObject(call))
		if err != nil {
			r.Throw(err)
		}
		return p
	}
	return Spec[point]{
		Name:   "Point",
		Length: 2,
		Construct: func(call goja.ConstructorCall) (point, error) {
			return point{X: call.Argument(0).ToFloat(), Y: call.Argument(1).ToFloat()}, nil
		},
		Properties: []Property{
			{
				Name: "x",
				Get: func(call goja.FunctionCall) goja.Value {
					return r.Runtime().ToValue(borrow(call).X)
				},
				Set: func(call goja.FunctionCall) goja.Value {
					borrow(call).X = call.Argument(0).ToFloat()
					return goja.Undefined()
				},
			},
			{
				Name: "y",
				Get: func(call goja.FunctionCall) goja.Value {
					return r.Runtime().ToValue(borrow(call).Y)
				},
			},
		},
		Methods: []Method{
			{
				Name:   "translate",
				Length: 2,
				Call: func(call goja.FunctionCall) goja.Value {
					p := borrow(call)
					p.X += call.Argument(0).ToFloat()
					p.Y += call.Argument(1).ToFloat()
					return call.This
				},
			},
		},
		StaticProperties: []Property{
			{Name: "dimensions", Value: int32(2), Flags: ConstantEnumerated},
			{Name: "kind", Value: "cartesian", Flags: ReadOnly},
		},
		StaticMethods: []Method{
			{
				Name: "origin",
				Call: func(call goja.FunctionCall) goja.Value {
					return Create(r, point{})
				},
			},
		},
	}
}

func point3Spec() Spec[point3] {
	return Spec[point3]{
		Name:   "Point3",
		Parent: reflect.TypeFor[point](),
		Length: 3,
		Construct: func(call goja.ConstructorCall) (point3, error) {
			return point3{
				point: point{X: call.Argument(0).ToFloat(), Y: call.Argument(1).ToFloat()},
				Z:     call.Argument(2).ToFloat(),
			}, nil
		},
	}
}

func labelSpec() Spec[label] {
	return Spec[label]{
		Name: "Label",
		Construct: func(call goja.ConstructorCall) (label, error) {
			return label{Text: call.Argument(0).String()}, nil
		},
	}
}

func mustRegister[T any](t *testing.T, r *Registry, spec Spec[T]) *ClassInfo {
	t.Helper()
	info, err := Register(r, spec)
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", spec.Name, err)
	}
	return info
}

func mustRun(t *testing.T, r *Registry, code string) goja.Value {
	t.Helper()
	v, err := r.Runtime().RunString(code)
	if err != nil {
		t.Fatalf("RunString(%q) failed: %v", code, err)
	}
	return v
}
