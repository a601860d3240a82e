// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dop251/goja"
)

// NewBuiltinRegistry returns a registry holding the standard REPL commands.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, cmd := range builtins() {
		if err := r.Register(cmd); err != nil {
			// Builtin names are fixed; a conflict is a programming bug
			panic(err)
		}
	}
	return r
}

func builtins() []*Command {
	return []*Command{
		{
			Name:        "help",
			Aliases:     []string{"h", "?"},
			Usage:       ".help [command]",
			Description: "Show available commands",
			Category:    CategorySession,
			Handler:     HandlerFunc(cmdHelp),
		},
		{
			Name:        "exit",
			Aliases:     []string{"quit", "q"},
			Usage:       ".exit",
			Description: "Leave the REPL (also Ctrl+D)",
			Category:    CategorySession,
			Handler: HandlerFunc(func(args []string, ctx *Context) error {
				return ErrExit
			}),
		},
		{
			Name:        "classes",
			Usage:       ".classes",
			Description: "List registered classes",
			Category:    CategoryClasses,
			Handler:     HandlerFunc(cmdClasses),
		},
		{
			Name:        "class",
			Usage:       ".class <Name>",
			Description: "Describe a registered class",
			LongHelp: "Prints the parent class, the constructor arity and the own\n" +
				"members of the prototype and the constructor.",
			Category: CategoryClasses,
			Handler:  HandlerFunc(cmdClass),
		},
		{
			Name:        "sweep",
			Usage:       ".sweep",
			Description: "Run finalizers of collected objects",
			LongHelp: "Finalizers also run after every evaluation. Objects are only\n" +
				"queued once the Go garbage collector has found them unreachable.",
			Category: CategoryClasses,
			Handler: HandlerFunc(func(args []string, ctx *Context) error {
				ctx.Printf("%d object(s) finalized\n", ctx.Session.Sweep())
				return nil
			}),
		},
		{
			Name:        "load",
			Usage:       ".load <file>",
			Description: "Run a script file in this session",
			Category:    CategoryScripts,
			Handler: HandlerFunc(func(args []string, ctx *Context) error {
				if ctx.RawArgs == "" {
					return fmt.Errorf("usage: .load <file>")
				}
				return ctx.Session.Load(ctx.RawArgs)
			}),
		},
	}
}

func cmdHelp(args []string, ctx *Context) error {
	if len(args) == 0 {
		ShowHelp(ctx.Out, ctx.Commands)
		return nil
	}
	cmd, ok := ctx.Commands.Lookup(strings.TrimPrefix(args[0], Prefix))
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	ShowCommandHelp(ctx.Out, cmd)
	return nil
}

func cmdClasses(args []string, ctx *Context) error {
	for _, name := range ctx.Session.Registry().Names() {
		ctx.Println(name)
	}
	return nil
}

func cmdClass(args []string, ctx *Context) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: .class <Name>")
	}
	info, ok := ctx.Session.Registry().LookupName(args[0])
	if !ok {
		return fmt.Errorf("no class named %s", args[0])
	}

	ctx.Printf("class %s", info.Name)
	if info.Parent != nil {
		ctx.Printf(" extends %s", info.Parent.Name)
	}
	ctx.Printf("  (Go type %s, %d constructor argument(s))\n", info.Type, info.Constructor.Get("length").ToInteger())
	ctx.Printf("  prototype: %s\n", strings.Join(ownNames(info.Prototype, "constructor"), ", "))
	ctx.Printf("  static:    %s\n", strings.Join(ownNames(info.Constructor, "length", "name", "prototype"), ", "))
	return nil
}

// ownNames returns obj's own string keys, sorted, minus skip.
func ownNames(obj *goja.Object, skip ...string) []string {
	var names []string
outer:
	for _, name := range obj.GetOwnPropertyNames() {
		for _, s := range skip {
			if name == s {
				continue outer
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
