// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"github.com/aplane-algo/jsbridge/internal/class"
	"github.com/aplane-algo/jsbridge/internal/command"
	"github.com/aplane-algo/jsbridge/internal/scripting"
	"github.com/aplane-algo/jsbridge/internal/util"
	"github.com/aplane-algo/jsbridge/internal/version"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

// replSession holds REPL state shared by the readline and basic loops.
// It is the command.Session the dot-commands act on.
type replSession struct {
	runner   *scripting.GojaRunner
	commands *command.Registry
	out      io.Writer
	color    bool
	pending  []string

	mu      sync.Mutex
	running bool
}

func newREPLSession(config util.Config, out io.Writer, color bool) *replSession {
	s := &replSession{
		runner:   scripting.NewGojaRunner(config),
		commands: command.NewBuiltinRegistry(),
		out:      out,
		color:    color,
	}
	s.runner.SetOutput(func(msg string) {
		_, _ = fmt.Fprintln(out, msg)
	})
	return s
}

// Registry implements command.Session.
func (s *replSession) Registry() *class.Registry {
	return s.runner.Registry()
}

// Sweep implements command.Session.
func (s *replSession) Sweep() int {
	return s.runner.Sweep()
}

// Load implements command.Session.
func (s *replSession) Load(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	_, err = s.run(func() (scripting.Result, error) {
		return s.runner.RunScript(path, string(src))
	})
	return err
}

// run executes fn while marked as running, so interrupt only reaches the
// script fn starts. An interrupt that lands after the script finished is
// cleared before the next prompt.
func (s *replSession) run(fn func() (scripting.Result, error)) (scripting.Result, error) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.runner.Runtime().ClearInterrupt()
		s.mu.Unlock()
	}()
	return fn()
}

// interrupt stops the running script. It does nothing at the prompt.
func (s *replSession) interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.runner.Interrupt()
	}
}

var _ command.Session = (*replSession)(nil)

func (s *replSession) style(st lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return st.Render(text)
}

func (s *replSession) prompt() string {
	if len(s.pending) > 0 {
		return s.style(promptStyle, "...") + " "
	}
	return s.style(promptStyle, "js>") + " "
}

func (s *replSession) printError(err error) {
	_, _ = fmt.Fprintln(s.out, s.style(errorStyle, "Error: "+err.Error()))
}

// handle processes one input line. It returns false when the session ends.
func (s *replSession) handle(line string) bool {
	if strings.HasSuffix(line, `\`) {
		s.pending = append(s.pending, strings.TrimSuffix(line, `\`))
		return true
	}
	if len(s.pending) > 0 {
		line = strings.Join(append(s.pending, line), "\n")
		s.pending = nil
	}

	if strings.TrimSpace(line) == "" {
		return true
	}
	if command.IsCommand(line) {
		err := s.commands.Execute(line, s, s.out)
		if errors.Is(err, command.ErrExit) {
			return false
		}
		if err != nil {
			s.printError(err)
		}
		return true
	}

	result, err := s.run(func() (scripting.Result, error) {
		return s.runner.Run(line)
	})
	if err != nil {
		s.printError(err)
		return true
	}
	if !result.IsEmpty {
		_, _ = fmt.Fprintln(s.out, s.style(resultStyle, formatResult(result)))
	}
	return true
}

func startBasicREPL(s *replSession) {
	fmt.Println("Running in basic mode (no history)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(s.prompt())
		if !scanner.Scan() {
			break
		}
		if !s.handle(scanner.Text()) {
			break
		}
	}
}

func startREPL(config util.Config) {
	color := util.SupportsColor()
	s := newREPLSession(config, os.Stdout, color)

	// Ctrl+C while a script runs arrives as a signal; at the prompt readline
	// reads it as a key instead.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		for range sigs {
			s.interrupt()
		}
	}()

	fmt.Println(s.style(titleStyle, "jsrun "+version.Short()))
	fmt.Println("Type .help for commands, Ctrl+C to interrupt, Ctrl+D to exit")
	fmt.Println("End a line with \\ to continue it on the next line")

	rlConfig := &readline.Config{
		Prompt:            s.prompt(),
		HistoryFile:       config.HistoryFile,
		HistoryLimit:      config.HistoryLimit,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		fmt.Printf("Failed to create readline instance, falling back to basic input: %v\n", err)
		startBasicREPL(s)
		return
	}
	defer func() {
		_ = rl.Close() // Best-effort close, errors during shutdown not critical
	}()

	for {
		rl.SetPrompt(s.prompt())

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 && len(s.pending) == 0 {
					fmt.Println("Use .exit or Ctrl+D to exit")
				}
				s.pending = nil
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		if !s.handle(line) {
			break
		}
	}
}
