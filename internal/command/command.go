// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package command implements the dot-commands of the jsrun REPL.
package command

import (
	"errors"
	"strings"
)

// Prefix starts every REPL command line.
const Prefix = "."

// ErrExit is returned by a handler to end the REPL session.
var ErrExit = errors.New("exit")

// Command represents a REPL command with metadata
type Command struct {
	Name        string   // Primary command name, without the prefix
	Aliases     []string // Alternative names (e.g., "q" for "exit")
	Usage       string   // Usage string: ".class <Name>"
	Description string   // One-line description
	LongHelp    string   // Multi-line detailed help (optional)
	Category    string   // "Session", "Classes", etc.
	Handler     Handler  // Command execution handler
}

// Handler is the interface all command handlers must implement
type Handler interface {
	Execute(args []string, ctx *Context) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(args []string, ctx *Context) error

// Execute implements the Handler interface
func (f HandlerFunc) Execute(args []string, ctx *Context) error {
	return f(args, ctx)
}

// Category constants for organizing commands
const (
	CategorySession = "Session"
	CategoryClasses = "Classes"
	CategoryScripts = "Scripts"
)

// categoryOrder is the order ShowHelp lists categories in.
var categoryOrder = []string{CategorySession, CategoryClasses, CategoryScripts}

// IsCommand reports whether line is a REPL command rather than script.
// The prefix must be followed by a letter or '?', so ".5 + 1" is script.
func IsCommand(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, Prefix) || len(trimmed) == len(Prefix) {
		return false
	}
	c := trimmed[len(Prefix)]
	return c == '?' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ParseLine splits a command line into its name (without prefix) and
// whitespace-separated arguments. RawArgs is everything after the name.
func ParseLine(line string) (name string, args []string, rawArgs string) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(line), Prefix)
	name, rawArgs, _ = strings.Cut(trimmed, " ")
	rawArgs = strings.TrimSpace(rawArgs)
	return name, strings.Fields(rawArgs), rawArgs
}
