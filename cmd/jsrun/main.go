// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Command jsrun evaluates JavaScript with the jsbridge classes installed.
//
//	jsrun -e 'new Point(3, 4).distanceTo({x: 0, y: 0})'
//	jsrun a.js b.js      run files concurrently, one runtime each
//	jsrun                start the REPL (or read a script from stdin)
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/aplane-algo/jsbridge/internal/util"
	"github.com/aplane-algo/jsbridge/internal/version"
)

func main() {
	// Define all flags upfront before parsing
	printVersion := flag.Bool("version", false, "Print version and exit")
	dataDir := flag.String("d", "", "Data directory (default: ~/.jsrun or JSRUN_DATA)")
	expr := flag.String("e", "", "Evaluate a JavaScript expression and print the result")
	parallel := flag.Int("parallel", 0, "Maximum script files run concurrently (overrides config)")
	timeoutMs := flag.Int("timeout", -1, "Interrupt scripts after this many milliseconds (overrides config)")
	verbose := flag.Bool("v", false, "Enable log() output")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: jsrun [flags] [script.js ...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *printVersion {
		fmt.Printf("jsrun %s\n", version.String())
		os.Exit(0)
	}

	// Initialize logger (supports JSRUN_DEBUG environment variable)
	util.InitLoggerTo(os.Stderr)

	// Resolve data directory: -d flag > JSRUN_DATA env var > ~/.jsrun
	resolvedDataDir := util.GetDataDir(*dataDir)
	config, err := util.LoadConfig(resolvedDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *parallel > 0 {
		config.Parallel = *parallel
	}
	if *timeoutMs >= 0 {
		config.TimeoutMs = *timeoutMs
	}
	if *verbose {
		config.Verbose = true
	}
	util.Debug("configuration loaded", "data_dir", resolvedDataDir, "parallel", config.Parallel, "timeout_ms", config.TimeoutMs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *expr != "":
		os.Exit(runExpression(ctx, config, *expr, os.Stdout, os.Stderr))
	case flag.NArg() > 0:
		os.Exit(runFiles(ctx, config, flag.Args(), os.Stdout, os.Stderr))
	case util.IsInteractive():
		stop() // Ctrl+C is handled by the REPL
		startREPL(config)
	default:
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read script: %v\n", err)
			os.Exit(1)
		}
		os.Exit(runSource(ctx, config, "<stdin>", string(src), os.Stdout, os.Stderr))
	}
}
