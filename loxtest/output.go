package loxtest

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/wonton/color"
)

// OutputConfig configures output formatting.
type OutputConfig struct {
	// Writer is where output is written.
	Writer io.Writer

	// Verbose prints a RUN line and timing for passing scripts too.
	Verbose bool

	// UseColor enables ANSI color codes.
	UseColor bool
}

// Output handles formatting and printing script results.
type Output struct {
	w        io.Writer
	verbose  bool
	useColor bool
}

// NewOutput creates a new Output formatter.
func NewOutput(cfg OutputConfig) *Output {
	return &Output{
		w:        cfg.Writer,
		verbose:  cfg.Verbose,
		useColor: cfg.UseColor,
	}
}

// Result prints the result lines for a script.
func (o *Output) Result(result *TestResult) {
	if result.Status == StatusPassed && !o.verbose {
		return
	}
	fmt.Fprintf(o.w, "=== RUN   %s\n", result.Name)

	var statusStr string
	switch result.Status {
	case StatusPassed:
		statusStr = o.colorize(color.Green, "--- PASS:")
	case StatusFailed:
		statusStr = o.colorize(color.Red, "--- FAIL:")
	case StatusError:
		statusStr = o.colorize(color.Red, "--- ERROR:")
	default:
		statusStr = fmt.Sprintf("--- %s:", result.Status)
	}
	fmt.Fprintf(o.w, "%s %s (%.3fs)\n", statusStr, result.Name, result.Duration.Seconds())

	if result.Status == StatusError && result.Error != nil {
		fmt.Fprintf(o.w, "    %s\n", result.Error.Error())
	}
	for _, failure := range result.Failures {
		o.printFailure(&failure)
	}
}

func (o *Output) printFailure(f *Failure) {
	loc := f.File
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	fmt.Fprintf(o.w, "    %s: %s\n", loc, f.Message)

	if f.Got != "" {
		fmt.Fprintf(o.w, "        %s:  %s\n", o.colorize(color.Red, "got"), f.Got)
	}
	if f.Want != "" {
		fmt.Fprintf(o.w, "        %s: %s\n", o.colorize(color.Green, "want"), f.Want)
	}
}

// Summary prints the final summary line.
func (o *Output) Summary(summary *Summary) {
	fmt.Fprintln(o.w)
	if summary.Success() {
		fmt.Fprintln(o.w, o.colorize(color.Green, "PASS"))
	} else {
		fmt.Fprintln(o.w, o.colorize(color.Red, "FAIL"))
	}

	parts := []string{}
	if summary.Passed > 0 {
		parts = append(parts, o.colorize(color.Green, fmt.Sprintf("%d passed", summary.Passed)))
	}
	if summary.Failed > 0 {
		parts = append(parts, o.colorize(color.Red, fmt.Sprintf("%d failed", summary.Failed)))
	}
	if summary.Errors > 0 {
		parts = append(parts, o.colorize(color.Red, fmt.Sprintf("%d errors", summary.Errors)))
	}
	if len(parts) > 0 {
		fmt.Fprintln(o.w, strings.Join(parts, ", "))
	}
}

func (o *Output) colorize(c color.Color, s string) string {
	if o.useColor {
		return c.Apply(s)
	}
	return s
}

// PrintResults prints all results in go test style.
func (o *Output) PrintResults(summary *Summary) {
	for _, result := range summary.Results {
		o.Result(result)
	}
	o.Summary(summary)
}
