// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"fmt"
	"io"

	"github.com/aplane-algo/jsbridge/internal/class"
)

// Session is the part of the REPL a command can act on.
type Session interface {
	// Registry returns the class registry of the session runtime.
	Registry() *class.Registry
	// Sweep runs pending class finalizers and returns how many ran.
	Sweep() int
	// Load runs a script file in the session runtime.
	Load(path string) error
}

// Context provides command handlers with access to REPL state
type Context struct {
	Session Session
	Out     io.Writer

	// RawArgs contains the argument string after the command name.
	RawArgs string

	// Commands is the registry the command was found in (for help).
	Commands *Registry
}

// Printf writes formatted output for the user.
func (ctx *Context) Printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(ctx.Out, format, args...)
}

// Println writes a line of output for the user.
func (ctx *Context) Println(args ...interface{}) {
	_, _ = fmt.Fprintln(ctx.Out, args...)
}
