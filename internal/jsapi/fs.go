// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

import (
	"fmt"
	"os"

	"github.com/dop251/goja"

	"github.com/aplane-algo/jsbridge/internal/fsutil"
	"github.com/aplane-algo/jsbridge/internal/util"
)

// newFS builds the fs object. Reads throw on failure; operations that change
// the filesystem return false instead.
func (a *API) newFS() *goja.Object {
	vm := a.runtime
	fs := vm.NewObject()

	define := func(name string, length int, fn func(goja.FunctionCall) goja.Value) {
		f := vm.ToValue(fn).(*goja.Object)
		_ = f.DefineDataProperty("length", vm.ToValue(length), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE)
		_ = fs.DefineDataProperty(name, f, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}

	// mutate wraps a filesystem change as a boolean-returning function.
	mutate := func(name string, nargs int, op func(args []string) error) {
		define(name, nargs, func(call goja.FunctionCall) goja.Value {
			a.requireArgs(call, nargs, fmt.Sprintf("fs.%s() requires %d argument(s)", name, nargs))
			args := make([]string, nargs)
			for i := range args {
				args[i] = call.Arguments[i].String()
			}
			if err := op(args); err != nil {
				util.Debug("fs operation failed", "op", name, "error", err)
				return vm.ToValue(false)
			}
			return vm.ToValue(true)
		})
	}

	define("readBinary", 1, func(call goja.FunctionCall) goja.Value {
		a.requireArgs(call, 1, "fs.readBinary() requires a path argument")
		data, err := os.ReadFile(call.Arguments[0].String())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return newUint8Array(vm, data)
	})
	define("readString", 1, func(call goja.FunctionCall) goja.Value {
		a.requireArgs(call, 1, "fs.readString() requires a path argument")
		data, err := os.ReadFile(call.Arguments[0].String())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(string(data))
	})
	define("readDir", 1, func(call goja.FunctionCall) goja.Value {
		a.requireArgs(call, 1, "fs.readDir() requires a path argument")
		names, err := fsutil.ReadDirNames(call.Arguments[0].String())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		out := make([]interface{}, len(names))
		for i, n := range names {
			out[i] = n
		}
		return vm.ToValue(out)
	})

	define("write", 2, func(call goja.FunctionCall) goja.Value {
		a.requireArgs(call, 2, "fs.write() requires a path and contents")
		if err := fsutil.WriteFile(call.Arguments[0].String(), toBytes(vm, call.Arguments[1])); err != nil {
			util.Debug("fs operation failed", "op", "write", "error", err)
			return vm.ToValue(false)
		}
		return vm.ToValue(true)
	})
	mutate("createDir", 1, func(p []string) error { return fsutil.Mkdir(p[0]) })
	mutate("createDirRecursive", 1, func(p []string) error { return fsutil.MkdirAll(p[0]) })
	mutate("removeFile", 1, func(p []string) error { return fsutil.RemoveFile(p[0]) })
	mutate("removeDir", 1, func(p []string) error { return fsutil.RemoveDir(p[0]) })
	mutate("removeDirRecursive", 1, func(p []string) error { return fsutil.RemoveAll(p[0]) })
	mutate("copy", 2, func(p []string) error {
		_, err := fsutil.CopyFile(p[0], p[1])
		return err
	})
	mutate("rename", 2, func(p []string) error { return os.Rename(p[0], p[1]) })
	mutate("softLink", 2, func(p []string) error { return os.Symlink(p[0], p[1]) })
	mutate("hardLink", 2, func(p []string) error { return os.Link(p[0], p[1]) })

	return fs
}
