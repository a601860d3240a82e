// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

import (
	"fmt"
	"math"
	"reflect"

	"github.com/dop251/goja"

	"github.com/aplane-algo/jsbridge/internal/class"
)

// Point is the host value behind the Point class.
type Point struct {
	X, Y float64
}

// Point3 is the host value behind Point3, a subclass of Point.
type Point3 struct {
	Point
	Z float64
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("Point(%g, %g)", p.X, p.Y)
}

func (p Point3) String() string {
	return fmt.Sprintf("Point3(%g, %g, %g)", p.X, p.Y, p.Z)
}

// borrowPoint returns the Point behind the receiver; Point3 receivers lend
// their embedded Point.
func (a *API) borrowPoint(call goja.FunctionCall) *Point {
	p, err := class.Borrow[Point](a.reg, thisObject(call))
	if err != nil {
		a.reg.Throw(err)
	}
	return p
}

func (a *API) borrowPoint3(call goja.FunctionCall) *Point3 {
	p, err := class.Borrow[Point3](a.reg, thisObject(call))
	if err != nil {
		a.reg.Throw(err)
	}
	return p
}

// toPoint converts a script value to a Point. Point instances are copied;
// plain objects with numeric x and y are accepted as well.
func (a *API) toPoint(v goja.Value) class.Outcome[Point] {
	out, err := class.FromValue[Point](a.reg, v)
	if err != nil {
		a.reg.Throw(err)
	}
	if out.OK {
		return out
	}
	obj, ok := v.(*goja.Object)
	if !ok || class.InstanceOf[Point](a.reg, obj) {
		return out
	}
	x, y := obj.Get("x"), obj.Get("y")
	if !isNumber(x) || !isNumber(y) {
		return out
	}
	return class.Success(Point{X: x.ToFloat(), Y: y.ToFloat()})
}

func isNumber(v goja.Value) bool {
	if v == nil {
		return false
	}
	switch v.Export().(type) {
	case int64, float64:
		return true
	}
	return false
}

func (a *API) floatGetter(get func(goja.FunctionCall) float64) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		return a.runtime.ToValue(get(call))
	}
}

func (a *API) pointSpec() class.Spec[Point] {
	return class.Spec[Point]{
		Name:   "Point",
		Length: 2,
		Construct: func(call goja.ConstructorCall) (Point, error) {
			return Point{X: call.Argument(0).ToFloat(), Y: call.Argument(1).ToFloat()}, nil
		},
		Properties: []class.Property{
			{
				Name: "x",
				Get:  a.floatGetter(func(call goja.FunctionCall) float64 { return a.borrowPoint(call).X }),
				Set: func(call goja.FunctionCall) goja.Value {
					a.borrowPoint(call).X = call.Argument(0).ToFloat()
					return goja.Undefined()
				},
			},
			{
				Name: "y",
				Get:  a.floatGetter(func(call goja.FunctionCall) float64 { return a.borrowPoint(call).Y }),
				Set: func(call goja.FunctionCall) goja.Value {
					a.borrowPoint(call).Y = call.Argument(0).ToFloat()
					return goja.Undefined()
				},
			},
		},
		Methods: []class.Method{
			{
				// translate(dx, dy) moves the point in place and returns it.
				Name:   "translate",
				Length: 2,
				Call: func(call goja.FunctionCall) goja.Value {
					p := a.borrowPoint(call)
					p.X += call.Argument(0).ToFloat()
					p.Y += call.Argument(1).ToFloat()
					return call.This
				},
			},
			{
				Name:   "distanceTo",
				Length: 1,
				Call: func(call goja.FunctionCall) goja.Value {
					a.requireArgs(call, 1, "distanceTo() requires a point argument")
					p := a.borrowPoint(call)
					q := class.Must(a.reg, a.toPoint(call.Arguments[0]), nil)
					return a.runtime.ToValue(p.Distance(q))
				},
			},
			{
				// clone() returns a new Point; subclasses clone their Point part.
				Name: "clone",
				Call: func(call goja.FunctionCall) goja.Value {
					return class.Create(a.reg, *a.borrowPoint(call))
				},
			},
			{
				Name: "toString",
				Call: func(call goja.FunctionCall) goja.Value {
					return a.runtime.ToValue(a.borrowPoint(call).String())
				},
			},
			{
				Name: "toJSON",
				Call: func(call goja.FunctionCall) goja.Value {
					p := a.borrowPoint(call)
					return a.runtime.ToValue(map[string]interface{}{"x": p.X, "y": p.Y})
				},
			},
		},
		StaticMethods: []class.Method{
			{
				Name:   "distance",
				Length: 2,
				Call: func(call goja.FunctionCall) goja.Value {
					a.requireArgs(call, 2, "Point.distance() requires two points")
					p := class.Must(a.reg, a.toPoint(call.Arguments[0]), nil)
					q := class.Must(a.reg, a.toPoint(call.Arguments[1]), nil)
					return a.runtime.ToValue(p.Distance(q))
				},
			},
			{
				// Point.from(v) accepts a Point or any {x, y} object and
				// returns null for anything else.
				Name:   "from",
				Length: 1,
				Call: func(call goja.FunctionCall) goja.Value {
					out := a.toPoint(call.Argument(0))
					if !out.OK {
						return goja.Null()
					}
					return class.Create(a.reg, out.Value)
				},
			},
			{
				Name:   "isPoint",
				Length: 1,
				Call: func(call goja.FunctionCall) goja.Value {
					return a.runtime.ToValue(class.InstanceOf[Point](a.reg, call.Argument(0)))
				},
			},
		},
		StaticProperties: []class.Property{
			{Name: "dimensions", Value: int32(2), Flags: class.ConstantEnumerated},
			{Name: "unit", Value: "px", Flags: class.ConstantEnumerated},
		},
	}
}

func (a *API) point3Spec() class.Spec[Point3] {
	return class.Spec[Point3]{
		Name:   "Point3",
		Parent: reflect.TypeFor[Point](),
		Length: 3,
		Construct: func(call goja.ConstructorCall) (Point3, error) {
			return Point3{
				Point: Point{X: call.Argument(0).ToFloat(), Y: call.Argument(1).ToFloat()},
				Z:     call.Argument(2).ToFloat(),
			}, nil
		},
		Properties: []class.Property{
			{
				Name: "z",
				Get:  a.floatGetter(func(call goja.FunctionCall) float64 { return a.borrowPoint3(call).Z }),
				Set: func(call goja.FunctionCall) goja.Value {
					a.borrowPoint3(call).Z = call.Argument(0).ToFloat()
					return goja.Undefined()
				},
			},
		},
		Methods: []class.Method{
			{
				Name: "toString",
				Call: func(call goja.FunctionCall) goja.Value {
					return a.runtime.ToValue(a.borrowPoint3(call).String())
				},
			},
			{
				// flatten() consumes the point and returns its 2D projection.
				Name: "flatten",
				Call: func(call goja.FunctionCall) goja.Value {
					p, err := class.Take[Point3](a.reg, thisObject(call))
					if err != nil {
						a.reg.Throw(err)
					}
					return class.Create(a.reg, p.Point)
				},
			},
			{
				Name: "toJSON",
				Call: func(call goja.FunctionCall) goja.Value {
					p := a.borrowPoint3(call)
					return a.runtime.ToValue(map[string]interface{}{"x": p.X, "y": p.Y, "z": p.Z})
				},
			},
		},
		StaticProperties: []class.Property{
			{Name: "dimensions", Value: int32(3), Flags: class.ConstantEnumerated},
		},
	}
}
