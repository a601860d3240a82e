// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package class

import (
	"errors"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/google/go-cmp/cmp"
)

func TestCreate_TakeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   point
	}{
		{"origin", point{}},
		{"positive", point{X: 1, Y: 2}},
		{"negative", point{X: -3.5, Y: -0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t)
			mustRegister(t, r, pointSpec(r))

			obj := Create(r, tt.in)
			got, err := Take[point](r, obj)
			if err != nil {
				t.Fatalf("Take failed: %v", err)
			}
			if diff := cmp.Diff(tt.in, *got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCreate_PanicsWhenUnregistered(t *testing.T) {
	r := newTestRegistry(t)
	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok || !errors.Is(err, ErrUninitialised) {
			t.Errorf("panic value = %v, want ErrUninitialised", rec)
		}
	}()
	Create(r, label{Text: "x"})
	t.Error("expected panic but Create returned normally")
}

func TestTake_AtMostOnce(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))
	obj := Create(r, point{X: 1, Y: 1})

	if _, err := Take[point](r, obj); err != nil {
		t.Fatalf("first Take failed: %v", err)
	}

	_, err := Take[point](r, obj)
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("second Take: expected *MissingError, got %v", err)
	}
	if missing.Class != "Point" {
		t.Errorf("MissingError.Class = %q, want Point", missing.Class)
	}

	p, err := Borrow[point](r, obj)
	if !errors.Is(err, ErrPrivateMissing) {
		t.Fatalf("Borrow after Take: expected ErrPrivateMissing, got %v", err)
	}
	if p != nil {
		t.Errorf("Borrow after Take returned %v, want nil", p)
	}
}

// TestPointScenario walks one object through its whole lifecycle.
func TestPointScenario(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))

	p := Create(r, point{X: 1.0, Y: 2.0})

	ref, err := Borrow[point](r, p)
	if err != nil {
		t.Fatalf("Borrow failed: %v", err)
	}
	if *ref != (point{X: 1.0, Y: 2.0}) {
		t.Fatalf("Borrow = %+v, want {1 2}", *ref)
	}

	ref.X = 3.0

	taken, err := Take[point](r, p)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if *taken != (point{X: 3.0, Y: 2.0}) {
		t.Errorf("Take = %+v, want {3 2}", *taken)
	}

	_, err = Borrow[point](r, p)
	if err == nil {
		t.Fatal("expected Borrow to fail after Take")
	}
	want := "Could not get private value in Point. It may have been destroyed."
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestBorrow_SharesTheSameValue(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))
	obj := Create(r, point{X: 1, Y: 2})

	a, _ := Borrow[point](r, obj)
	b, _ := Borrow[point](r, obj)
	if a != b {
		t.Fatal("expected both borrows to point at the same box")
	}

	if err := r.Runtime().Set("p", obj); err != nil {
		t.Fatal(err)
	}
	mustRun(t, r, "p.translate(10, 20)")
	if *a != (point{X: 11, Y: 22}) {
		t.Errorf("after translate = %+v, want {11 22}", *a)
	}
}

func TestBorrow_Errors(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))
	mustRegister(t, r, labelSpec())

	tests := []struct {
		name string
		obj  func() *goja.Object
		want error
	}{
		{"nil object", func() *goja.Object { return nil }, ErrClassMismatch},
		{"plain object", func() *goja.Object { return r.Runtime().NewObject() }, ErrClassMismatch},
		{"other class", func() *goja.Object { return Create(r, label{Text: "hi"}) }, ErrClassMismatch},
		{"prototype itself", func() *goja.Object { return MustLookup[point](r).Prototype }, ErrClassMismatch},
		{"instance without slot", func() *goja.Object {
			return mustRun(t, r, "Object.create(Point.prototype)").(*goja.Object)
		}, ErrPrivateMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Borrow[point](r, tt.obj())
			if !errors.Is(err, tt.want) {
				t.Errorf("Borrow error = %v, want %v", err, tt.want)
			}
			_, err = Take[point](r, tt.obj())
			if !errors.Is(err, tt.want) {
				t.Errorf("Take error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubclass_BorrowEmbeddedParent(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))
	mustRegister(t, r, point3Spec())

	obj := Create(r, point3{point: point{X: 1, Y: 2}, Z: 3})

	parent, err := Borrow[point](r, obj)
	if err != nil {
		t.Fatalf("Borrow[point] on Point3 failed: %v", err)
	}
	parent.X = 9

	child, err := Borrow[point3](r, obj)
	if err != nil {
		t.Fatalf("Borrow[point3] failed: %v", err)
	}
	if child.X != 9 || child.Z != 3 {
		t.Errorf("child = %+v, want X=9 Z=3", *child)
	}

	if _, err := Take[point3](r, obj); err != nil {
		t.Fatalf("Take[point3] failed: %v", err)
	}
	if _, err := Borrow[point](r, obj); !errors.Is(err, ErrPrivateMissing) {
		t.Errorf("Borrow[point] after Take: expected ErrPrivateMissing, got %v", err)
	}
}

func TestSubclass_TakeAsParent(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))
	mustRegister(t, r, point3Spec())

	obj := Create(r, point3{point: point{X: 1, Y: 2}, Z: 3})
	p, err := Take[point](r, obj)
	if err != nil {
		t.Fatalf("Take[point] on Point3 failed: %v", err)
	}
	if *p != (point{X: 1, Y: 2}) {
		t.Errorf("p = %+v, want {1 2}", *p)
	}

	if _, err := Borrow[point3](r, obj); !errors.Is(err, ErrPrivateMissing) {
		t.Errorf("Borrow[point3] after Take[point]: expected ErrPrivateMissing, got %v", err)
	}
	if _, err := Take[point](r, obj); !errors.Is(err, ErrPrivateMissing) {
		t.Errorf("second Take[point]: expected ErrPrivateMissing, got %v", err)
	}
}

func TestBorrow_ParentObjectIsNotChild(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))
	mustRegister(t, r, point3Spec())

	obj := Create(r, point{X: 1})
	if _, err := Borrow[point3](r, obj); !errors.Is(err, ErrClassMismatch) {
		t.Errorf("expected ErrClassMismatch, got %v", err)
	}
}

func TestConstructor_FromScript(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))

	obj := mustRun(t, r, "var p = new Point(1, 2); p.x = 5; p").(*goja.Object)
	p, err := Borrow[point](r, obj)
	if err != nil {
		t.Fatalf("Borrow failed: %v", err)
	}
	if *p != (point{X: 5, Y: 2}) {
		t.Errorf("p = %+v, want {5 2}", *p)
	}

	tests := []struct {
		code string
		want interface{}
	}{
		{"p instanceof Point", true},
		{"p.x + p.y === 7", true},
		{"p.translate(1, 1).x === 6", true},
		{"Object.keys(p).length === 0", true},
		{"Point(4, 5) instanceof Point", true},
		{"Point(4, 5).y === 5", true},
		{"Point.origin().x === 0", true},
	}
	for _, tt := range tests {
		if got := mustRun(t, r, tt.code).Export(); got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.code, got, got, tt.want)
		}
	}
}

func TestConstructor_ScriptSubclass(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))

	obj := mustRun(t, r, `
		class Named extends Point {
			constructor(name, x, y) { super(x, y); this.name = name; }
			describe() { return this.name + "@" + this.x; }
		}
		var n = new Named("a", 7, 8);
		n
	`).(*goja.Object)

	if !InstanceOf[point](r, obj) {
		t.Fatal("script subclass instance should be an instance of Point")
	}
	p, err := Borrow[point](r, obj)
	if err != nil {
		t.Fatalf("Borrow failed: %v", err)
	}
	if *p != (point{X: 7, Y: 8}) {
		t.Errorf("p = %+v, want {7 8}", *p)
	}
	if got := mustRun(t, r, "n.describe()").String(); got != "a@7" {
		t.Errorf("describe() = %q, want a@7", got)
	}
}

func TestConstructor_ReapplyDoesNotReplaceValue(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))

	mustRun(t, r, "var p = new Point(1, 2); var q = Point.call(p, 8, 9)")
	p, err := Borrow[point](r, r.Runtime().Get("p").(*goja.Object))
	if err != nil {
		t.Fatalf("Borrow failed: %v", err)
	}
	if *p != (point{X: 1, Y: 2}) {
		t.Errorf("p = %+v, want the original {1 2}", *p)
	}
	if got := mustRun(t, r, "q !== p && q.x === 8").Export(); got != true {
		t.Error("expected the re-applied constructor to return a fresh instance")
	}
}

func TestNativeMethod_ThrowsAfterTake(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))
	obj := Create(r, point{X: 1, Y: 2})
	if err := r.Runtime().Set("p", obj); err != nil {
		t.Fatal(err)
	}
	if _, err := Take[point](r, obj); err != nil {
		t.Fatal(err)
	}

	_, err := r.Runtime().RunString("p.x")
	var exc *goja.Exception
	if !errors.As(err, &exc) {
		t.Fatalf("expected *goja.Exception, got %v", err)
	}
	if !strings.Contains(exc.Error(), "Could not get private value in Point") {
		t.Errorf("exception = %q, want missing-value message", exc.Error())
	}
}

func TestSlot_IsHiddenFromScripts(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))
	if err := r.Runtime().Set("p", Create(r, point{X: 1, Y: 2})); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		code string
		want interface{}
	}{
		{"Object.getOwnPropertySymbols(p).length", int64(0)},
		{"Object.getOwnPropertyNames(p).length", int64(0)},
		{"Reflect.ownKeys(p).length", int64(0)},
		{"JSON.stringify(p)", "{}"},
	}
	for _, tt := range tests {
		if got := mustRun(t, r, tt.code).Export(); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestSlot_CannotBeGrafted(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))
	p := Create(r, point{X: 1, Y: 2})
	if err := r.Runtime().Set("p", p); err != nil {
		t.Fatal(err)
	}

	// Copy every own property, symbols included, onto an object that
	// shares the prototype.
	forged := mustRun(t, r, `
		var q = Object.create(Point.prototype);
		Reflect.ownKeys(p).forEach(function (k) {
			Object.defineProperty(q, k, Object.getOwnPropertyDescriptor(p, k));
		});
		q
	`).(*goja.Object)

	if _, err := r.Runtime().RunString("q.x = 99"); err == nil {
		t.Error("expected writing through a forged object to throw")
	}
	if _, err := Take[point](r, forged); !errors.Is(err, ErrPrivateMissing) {
		t.Errorf("Take on forged object: expected ErrPrivateMissing, got %v", err)
	}
	got, err := Borrow[point](r, p)
	if err != nil {
		t.Fatalf("Borrow on the real object failed: %v", err)
	}
	if *got != (point{X: 1, Y: 2}) {
		t.Errorf("value = %+v, want {1 2}", *got)
	}
}

func TestSlot_ProxyReceiverHasNoValue(t *testing.T) {
	r := newTestRegistry(t)
	mustRegister(t, r, pointSpec(r))
	p := Create(r, point{X: 1, Y: 2})
	if err := r.Runtime().Set("p", p); err != nil {
		t.Fatal(err)
	}

	proxy := mustRun(t, r, `
		var pr = new Proxy(p, {
			get: function (target, key) { return target[key]; }
		});
		pr
	`).(*goja.Object)

	_, err := r.Runtime().RunString("Point.prototype.translate.call(pr, 99, 1)")
	if err == nil || !strings.Contains(err.Error(), "Point") {
		t.Errorf("translate on a proxy: expected a Point error, got %v", err)
	}
	if _, err := Borrow[point](r, proxy); err == nil {
		t.Error("Borrow on a proxy should fail")
	}
	got, _ := Borrow[point](r, p)
	if *got != (point{X: 1, Y: 2}) {
		t.Errorf("value = %+v, want {1 2}", *got)
	}
}
