// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package scripting runs JavaScript on a goja runtime with the jsbridge
// classes installed. Each runner owns one runtime and the class registry
// bound to it, so a runner must only be used from one goroutine at a time.
package scripting

// ScriptError represents an error that occurred during script execution.
type ScriptError struct {
	Message string
}

func (e *ScriptError) Error() string {
	return e.Message
}

// Result holds the outcome of running a script.
type Result struct {
	// Value is the exported result value (nil if IsEmpty is true)
	Value interface{}
	// Text is the script's own string form of the result (its toString)
	Text string
	// IsEmpty is true if the script returned undefined/null/void
	IsEmpty bool
}

// Runner is the low-level VM abstraction for executing scripts.
//
// This interface is designed for:
//   - REPL usage (persistent runtime, line-by-line execution)
//   - the eval command (one runner per script file)
//
// It does NOT handle file I/O; callers read sources and pass them to
// RunScript with a name used in stack traces.
type Runner interface {
	// Run executes the given code and returns the result.
	// Errors include syntax errors, runtime exceptions, etc.
	Run(code string) (Result, error)

	// RunScript is Run with a script name for error locations.
	RunScript(name, code string) (Result, error)

	// SetOutput sets the function used for print() output.
	SetOutput(fn func(string))

	// Interrupt stops the currently running script.
	// Safe to call from another goroutine.
	Interrupt()
}
