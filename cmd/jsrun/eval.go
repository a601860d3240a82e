// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/aplane-algo/jsbridge/internal/scripting"
	"github.com/aplane-algo/jsbridge/internal/util"
)

// newRunner creates a runner writing print() output to w. The runner is
// interrupted when ctx is cancelled.
func newRunner(ctx context.Context, config util.Config, w io.Writer) (*scripting.GojaRunner, func() bool) {
	runner := scripting.NewGojaRunner(config)
	runner.SetOutput(func(msg string) {
		_, _ = fmt.Fprintln(w, msg)
	})
	return runner, context.AfterFunc(ctx, runner.Interrupt)
}

// formatResult renders a script result for display. Class instances and
// other objects without an exported form use their script string.
func formatResult(res scripting.Result) string {
	switch v := res.Value.(type) {
	case map[string]interface{}:
		if len(v) == 0 {
			return res.Text
		}
		return fmt.Sprintf("%v", v)
	case []interface{}:
		return fmt.Sprintf("%v", v)
	case nil:
		return res.Text
	default:
		return fmt.Sprint(v)
	}
}

// runExpression evaluates expr, prints a non-empty result and returns the
// process exit code.
func runExpression(ctx context.Context, config util.Config, expr string, stdout, stderr io.Writer) int {
	runner, stop := newRunner(ctx, config, stdout)
	defer stop()

	result, err := runner.Run(expr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if !result.IsEmpty {
		_, _ = fmt.Fprintln(stdout, formatResult(result))
	}
	return 0
}

// runSource runs one named script without printing its completion value.
func runSource(ctx context.Context, config util.Config, name, src string, stdout, stderr io.Writer) int {
	runner, stop := newRunner(ctx, config, stdout)
	defer stop()

	if _, err := runner.RunScript(name, src); err != nil {
		_, _ = fmt.Fprintf(stderr, "Script error: %v\n", err)
		return 1
	}
	return 0
}

type fileResult struct {
	output bytes.Buffer
	err    error
}

// runFiles runs each script on its own runtime, at most config.Parallel at a
// time. Output is buffered per file and written in argument order.
func runFiles(ctx context.Context, config util.Config, paths []string, stdout, stderr io.Writer) int {
	results := make([]fileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if config.Parallel > 0 {
		g.SetLimit(config.Parallel)
	}

	for i, path := range paths {
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				// Cancels ctx, which interrupts the scripts still running.
				return fmt.Errorf("failed to read script: %w", err)
			}

			res := &results[i]
			runner, stop := newRunner(ctx, config, &res.output)
			defer stop()

			util.Debug("running script", "file", path)
			_, res.err = runner.RunScript(path, string(src))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	code := 0
	for i, path := range paths {
		res := &results[i]
		_, _ = stdout.Write(res.output.Bytes())
		if res.err != nil {
			_, _ = fmt.Fprintf(stderr, "Script error in %s: %v\n", path, res.err)
			code = 1
		}
	}
	return code
}
