// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package scripting

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/aplane-algo/jsbridge/internal/class"
	"github.com/aplane-algo/jsbridge/internal/jsapi"
	"github.com/aplane-algo/jsbridge/internal/util"
)

// GojaRunner implements Runner using the Goja JavaScript interpreter.
type GojaRunner struct {
	vm      *goja.Runtime
	reg     *class.Registry
	api     *jsapi.API
	output  func(string)
	timeout time.Duration
}

// NewGojaRunner creates a runtime, binds a class registry to it and installs
// the built-in classes and functions.
func NewGojaRunner(config util.Config) *GojaRunner {
	r := &GojaRunner{
		output:  func(s string) {}, // Default: discard output
		timeout: time.Duration(config.TimeoutMs) * time.Millisecond,
	}

	vm := goja.New()
	if config.FieldNames != "" {
		vm.SetFieldNameMapper(goja.TagFieldNameMapper(config.FieldNames, true))
	} else {
		vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	}

	reg := class.NewRegistry(vm)
	reg.SetLogger(util.Logger)

	// Create API with output wrapper (so SetOutput works after creation)
	api := jsapi.NewAPI(config.Verbose, config.AllowFS, func(msg string) {
		r.output(msg)
	})
	if err := api.RegisterAll(reg); err != nil {
		// Registration errors are programming bugs, not runtime errors
		panic("failed to register JS API: " + err.Error())
	}

	r.vm = vm
	r.reg = reg
	r.api = api

	return r
}

// Run executes JavaScript code and returns the result.
func (r *GojaRunner) Run(code string) (Result, error) {
	return r.exec(func() (goja.Value, error) {
		return r.vm.RunString(code)
	})
}

// RunScript executes code compiled under the given script name.
func (r *GojaRunner) RunScript(name, code string) (Result, error) {
	return r.exec(func() (goja.Value, error) {
		return r.vm.RunScript(name, code)
	})
}

func (r *GojaRunner) exec(run func() (goja.Value, error)) (Result, error) {
	if r.timeout > 0 {
		timer := time.AfterFunc(r.timeout, r.Interrupt)
		defer func() {
			timer.Stop()
			r.vm.ClearInterrupt()
		}()
	}

	result, err := run()

	// Finalizers of objects collected during the run execute here, on the
	// goroutine that owns the runtime.
	if n := r.reg.Sweep(); n > 0 {
		util.Debug("finalized collected objects", "count", n)
	}

	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			r.vm.ClearInterrupt()
			return Result{}, &ScriptError{Message: fmt.Sprint(interrupted.Value())}
		}
		// Convert Goja exceptions to regular errors with clean messages
		var jsErr *goja.Exception
		if errors.As(err, &jsErr) {
			// Use String() to get proper error message including stack trace info
			// Don't use Value().Export() as that returns map[] for Error objects
			return Result{}, &ScriptError{Message: jsErr.String()}
		}
		return Result{}, err
	}

	// Check for empty/void results
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return Result{IsEmpty: true}, nil
	}

	return Result{Value: result.Export(), Text: result.String()}, nil
}

// Sweep runs pending class finalizers and returns how many ran.
func (r *GojaRunner) Sweep() int {
	return r.reg.Sweep()
}

// SetOutput sets the function used for print() and log() output.
func (r *GojaRunner) SetOutput(fn func(string)) {
	if fn == nil {
		r.output = func(s string) {}
	} else {
		r.output = fn
	}
}

// Interrupt stops the currently running script.
// Safe to call from another goroutine (e.g., for timeout enforcement).
func (r *GojaRunner) Interrupt() {
	r.vm.Interrupt("script interrupted")
}

// Runtime returns the underlying Goja runtime.
// Use sparingly - prefer the Runner interface for portability.
func (r *GojaRunner) Runtime() *goja.Runtime {
	return r.vm
}

// Registry returns the class registry bound to the runtime.
func (r *GojaRunner) Registry() *class.Registry {
	return r.reg
}

// Compile-time interface check
var _ Runner = (*GojaRunner)(nil)
