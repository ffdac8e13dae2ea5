package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/deepnoodle-ai/lox"
	"github.com/deepnoodle-ai/lox/dis"
	"github.com/deepnoodle-ai/lox/vm"
	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/deepnoodle-ai/wonton/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

func runHandler(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}

	// Check if we should run REPL
	if shouldRunRepl(ctx) {
		return runRepl(cfg, log, ctx.Bool("timing"))
	}

	in, err := getInput(ctx, false)
	if err != nil {
		return err
	}

	var compileOpts []lox.Option
	if ctx.Bool("print-code") && !in.compiled() {
		compileOpts = append(compileOpts, lox.WithDisassembly(os.Stdout))
	}
	chunk, err := loadChunk(in, log, compileOpts...)
	if err != nil {
		return err
	}
	if ctx.Bool("print-code") && in.compiled() {
		dis.Disassemble(os.Stdout, chunk, chunk.Name())
	}

	opts := runOptions(cfg)
	if ctx.Bool("trace") {
		opts = append(opts, lox.WithObserver(dis.NewTracer(os.Stderr)))
	}

	// Execute the code
	start := time.Now()
	result, err := lox.Run(chunk, opts...)
	dt := time.Since(start)
	log.Debug().Dur("duration", dt).Stringer("result", lox.ResultOf(err)).Msg("run finished")
	if err != nil {
		return withExitCode(exitRuntime, err)
	}

	// Print the result
	output, err := formatOutput(ctx.String("output"), cfg.NoColor, result)
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Println(output)
	}

	// Optionally print execution time
	if ctx.Bool("timing") {
		fmt.Printf("%v\n", dt)
	}
	return nil
}

func versionHandler(ctx *cli.Context) error {
	format := strings.ToLower(ctx.String("output"))
	if format == "json" {
		info, err := json.MarshalIndent(map[string]any{
			"version": version,
			"commit":  commit,
			"date":    date,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(info))
	} else {
		fmt.Println(version)
	}
	return nil
}

// setup loads settings and configures colors and logging for a command.
func setup(ctx *cli.Context) (*settings, zerolog.Logger, error) {
	cfg, err := loadSettings(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if cfg.NoColor {
		color.Enabled = false
	}
	log, err := newLogger(os.Stderr, cfg.LogLevel, cfg.NoColor)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

func runOptions(cfg *settings) []lox.Option {
	opts := []lox.Option{lox.WithOutput(os.Stdout)}
	if cfg.StackSize > 0 {
		opts = append(opts, lox.WithStackSize(cfg.StackSize))
	}
	return opts
}

func shouldRunRepl(ctx *cli.Context) bool {
	// No REPL if explicitly disabled
	if ctx.Bool("no-repl") {
		return false
	}
	// No REPL if reading from stdin
	if ctx.Bool("stdin") {
		return false
	}
	// No REPL if code provided via -c
	if ctx.IsSet("code") {
		return false
	}
	// No REPL if file provided
	if ctx.Arg(0) != "" {
		return false
	}
	return isTerminalIO()
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

// runResultCode maps an evaluation error to an exit code.
func runResultCode(err error) int {
	switch lox.ResultOf(err) {
	case vm.ResultCompileError:
		return exitCompile
	case vm.ResultRuntimeError:
		return exitRuntime
	default:
		return 0
	}
}
