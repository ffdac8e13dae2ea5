package main

import (
	"errors"
	"os"

	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/deepnoodle-ai/wonton/color"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes follow the BSD sysexits convention.
const (
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
	exitIO      = 74
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func main() {
	if err := execute(os.Args[1:]); err != nil {
		if cli.IsHelpRequested(err) {
			return
		}
		printError(err.Error())
		os.Exit(exitCode(err))
	}
}

func execute(args []string) error {
	app := cli.New("lox").
		Description("Compile and run Lox scripts on a bytecode virtual machine").
		Version(version).
		AddCompletionCommand()

	// Global flags
	app.GlobalFlags(
		cli.String("code", "c").Help("Code to evaluate"),
		cli.Bool("stdin", "").Help("Read code from stdin"),
		cli.Bool("no-color", "").Env("NO_COLOR").Help("Disable colored output"),
		cli.String("log-level", "").Help("Log level (debug, info, warn, error)"),
		cli.Int("stack-size", "").Help("Operand stack capacity"),
		cli.String("config", "").Help("Config file (default $HOME/.lox.yaml)"),
	)

	// Root command: runs a script or starts the REPL
	app.Main().
		Args("file?").
		Flags(
			cli.Bool("timing", "").Help("Show execution time"),
			cli.String("output", "o").Enum("json", "text").Help("Output format"),
			cli.Bool("trace", "").Help("Trace execution to stderr"),
			cli.Bool("print-code", "").Help("Disassemble the chunk before running it"),
			cli.Bool("no-repl", "").Help("Disable the REPL"),
		).
		Run(runHandler)

	app.Command("repl").
		Description("Start an interactive session").
		Flags(
			cli.Bool("timing", "").Help("Show execution time"),
		).
		Run(replHandler)

	app.Command("eval").
		Alias("e").
		Description("Evaluate an expression").
		Args("expr?").
		Flags(
			cli.String("code", "c").Help("Code to evaluate"),
			cli.Bool("stdin", "").Help("Read code from stdin"),
			cli.String("output", "o").Enum("json", "text").Help("Output format"),
			cli.Bool("quiet", "q").Help("Suppress output"),
		).
		Run(evalHandler)

	app.Command("dis").
		Description("Disassemble Lox bytecode").
		Args("file?").
		Flags(
			cli.String("code", "c").Help("Code to disassemble"),
			cli.Bool("stdin", "").Help("Read code from stdin"),
			cli.Bool("table", "t").Help("Print the instructions as a table"),
		).
		Run(disHandler)

	app.Command("tokens").
		Description("Print the token stream of Lox source code").
		Args("file?").
		Flags(
			cli.String("code", "c").Help("Code to scan"),
			cli.Bool("stdin", "").Help("Read code from stdin"),
		).
		Run(tokensHandler)

	app.Command("build").
		Description("Compile a Lox script to a .loxc file").
		Args("file").
		Flags(
			cli.String("out", "o").Help("Output path (default <file>.loxc)"),
		).
		Run(buildHandler)

	app.Command("test").
		Description("Run Lox scripts and check their expectations").
		Args("patterns...").
		Flags(
			cli.Bool("verbose", "v").Help("Verbose output"),
			cli.String("run", "r").Help("Run only scripts matching pattern"),
		).
		Run(testHandler)

	app.Command("version").
		Description("Print version information").
		Flags(
			cli.String("output", "o").Enum("json", "text").Help("Output format"),
		).
		Run(versionHandler)

	return app.ExecuteArgs(args)
}

func exitCode(err error) int {
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return cli.GetExitCode(err)
}

func printError(msg string) {
	if color.ShouldColorize(os.Stderr) {
		msg = color.Red.Apply(msg)
	}
	os.Stderr.WriteString(msg + "\n")
}
