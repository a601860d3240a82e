// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// requireArgs panics with a JS exception if the call has fewer than n arguments.
func (a *API) requireArgs(call goja.FunctionCall, n int, msg string) {
	if len(call.Arguments) < n {
		panic(a.runtime.ToValue(msg))
	}
}

// formatArgs renders print() arguments separated by spaces. Class instances
// use their toString; other values are exported first.
func (a *API) formatArgs(call goja.FunctionCall) string {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		if obj, ok := arg.(*goja.Object); ok {
			if _, isClass := a.reg.ClassOf(obj); isClass {
				parts[i] = obj.String()
				continue
			}
		}
		parts[i] = fmt.Sprint(arg.Export())
	}
	return strings.Join(parts, " ")
}

// thisObject returns the receiver of a native method call, or nil.
func thisObject(call goja.FunctionCall) *goja.Object {
	obj, _ := call.This.(*goja.Object)
	return obj
}

// toBytes converts strings, typed arrays, ArrayBuffers and arrays of numbers
// to a byte slice.
func toBytes(vm *goja.Runtime, v goja.Value) []byte {
	if obj, ok := v.(*goja.Object); ok {
		if data, ok := typedArrayBytes(obj); ok {
			return data
		}
	}
	switch val := v.Export().(type) {
	case string:
		return []byte(val)
	case []byte:
		return val
	case goja.ArrayBuffer:
		return val.Bytes()
	case []interface{}:
		out := make([]byte, len(val))
		for i, item := range val {
			n, ok := item.(int64)
			if !ok || n < 0 || n > 255 {
				panic(vm.ToValue(fmt.Sprintf("byte array element %d out of range", i)))
			}
			out[i] = byte(n)
		}
		return out
	default:
		panic(vm.ToValue(fmt.Sprintf("cannot convert %s to bytes", v.String())))
	}
}

// typedArrayBytes returns the bytes viewed by a typed array or DataView.
func typedArrayBytes(obj *goja.Object) ([]byte, bool) {
	buffer := obj.Get("buffer")
	if buffer == nil {
		return nil, false
	}
	buf, ok := buffer.Export().(goja.ArrayBuffer)
	if !ok {
		return nil, false
	}
	offset, length := obj.Get("byteOffset"), obj.Get("byteLength")
	if offset == nil || length == nil {
		return nil, false
	}
	data := buf.Bytes()
	off, n := offset.ToInteger(), length.ToInteger()
	if off < 0 || n < 0 || off+n > int64(len(data)) {
		return nil, false
	}
	return data[off : off+n], true
}

// newUint8Array wraps data in a script Uint8Array.
func newUint8Array(vm *goja.Runtime, data []byte) goja.Value {
	ctor := vm.Get("Uint8Array")
	arr, err := vm.New(ctor, vm.ToValue(vm.NewArrayBuffer(data)))
	if err != nil {
		panic(vm.NewGoError(err))
	}
	return arr
}

// toStringArray converts a Goja value to []string.
func toStringArray(v goja.Value) []string {
	exported := v.Export()
	switch arr := exported.(type) {
	case []interface{}:
		result := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	case []string:
		return arr
	default:
		return nil
	}
}
