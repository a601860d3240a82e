// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package jsapi provides the built-in JavaScript classes and functions of
// jsrun.
//
// Everything here is installed through a class.Registry so native methods can
// borrow and take the Go values behind script objects. Functions are
// organized into domain-specific files:
//   - api.go: Core API struct, registration, output
//   - point.go: Point and Point3 value classes
//   - hasher.go: Hasher class over the hash algorithm table
//   - watcher.go: Watcher class wrapping an fsnotify watcher
//   - fs.go: the fs object
//   - helpers.go: Type conversion utilities
package jsapi

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/aplane-algo/jsbridge/internal/class"
)

// API provides JavaScript bindings for one runtime.
type API struct {
	reg     *class.Registry
	runtime *goja.Runtime
	verbose bool
	allowFS bool
	output  func(string)
}

// NewAPI creates a new JavaScript API instance.
func NewAPI(verbose, allowFS bool, output func(string)) *API {
	return &API{
		verbose: verbose,
		allowFS: allowFS,
		output:  output,
	}
}

// RegisterAll registers all classes and functions on the registry's runtime.
func (a *API) RegisterAll(reg *class.Registry) error {
	a.reg = reg
	a.runtime = reg.Runtime()
	vm := a.runtime

	set := func(name string, fn func(goja.FunctionCall) goja.Value) error {
		return vm.Set(name, fn)
	}

	// Output functions
	if err := set("print", a.jsPrint); err != nil {
		return fmt.Errorf("failed to register print: %w", err)
	}
	if err := set("log", a.jsLog); err != nil {
		return fmt.Errorf("failed to register log: %w", err)
	}
	if err := set("setVerbose", a.jsSetVerbose); err != nil {
		return fmt.Errorf("failed to register setVerbose: %w", err)
	}
	if err := set("classes", a.jsClasses); err != nil {
		return fmt.Errorf("failed to register classes: %w", err)
	}

	// Classes. Parents must be registered before their subclasses.
	if _, err := class.Register(reg, a.pointSpec()); err != nil {
		return fmt.Errorf("failed to register Point: %w", err)
	}
	if _, err := class.Register(reg, a.point3Spec()); err != nil {
		return fmt.Errorf("failed to register Point3: %w", err)
	}
	if _, err := class.Register(reg, a.hasherSpec()); err != nil {
		return fmt.Errorf("failed to register Hasher: %w", err)
	}
	if _, err := class.Register(reg, a.watcherSpec()); err != nil {
		return fmt.Errorf("failed to register Watcher: %w", err)
	}

	if a.allowFS {
		if err := vm.Set("fs", a.newFS()); err != nil {
			return fmt.Errorf("failed to register fs: %w", err)
		}
	}

	return nil
}

// output helper for internal use.
func (a *API) outputMsg(msg string) {
	if a.output != nil {
		a.output(msg)
	} else {
		fmt.Println(msg)
	}
}

// jsPrint outputs a message to the console.
func (a *API) jsPrint(call goja.FunctionCall) goja.Value {
	a.outputMsg(a.formatArgs(call))
	return goja.Undefined()
}

// jsLog outputs a debug message (only in verbose mode).
func (a *API) jsLog(call goja.FunctionCall) goja.Value {
	if !a.verbose {
		return goja.Undefined()
	}
	a.outputMsg("[debug] " + a.formatArgs(call))
	return goja.Undefined()
}

// jsSetVerbose enables or disables log() output.
// setVerbose(enabled) - Sets verbose mode
func (a *API) jsSetVerbose(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "setVerbose() requires a boolean argument")
	a.verbose = call.Arguments[0].ToBoolean()
	return goja.Undefined()
}

// jsClasses returns the names of the registered classes.
func (a *API) jsClasses(call goja.FunctionCall) goja.Value {
	return a.runtime.ToValue(a.reg.Names())
}
