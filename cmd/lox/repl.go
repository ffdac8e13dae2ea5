package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/deepnoodle-ai/lox"
	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

var (
	promptColor = color.New(color.FgYellow, color.Bold)
	resultColor = color.New(color.FgGreen)
	errorColor  = color.New(color.FgRed)
	mutedColor  = color.New(color.FgHiBlack)
)

func replHandler(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	return runRepl(cfg, log, ctx.Bool("timing"))
}

func runRepl(cfg *settings, log zerolog.Logger, timing bool) error {
	if cfg.NoColor {
		color.NoColor = true
	}
	r := newRepl(os.Stdin, os.Stdout, cfg)
	r.log = log
	r.timing = timing
	fmt.Fprintf(r.out, "Lox %s\n", version)
	fmt.Fprintln(r.out, mutedColor.Sprint("Type :help for commands, :quit to exit."))
	return r.run()
}

// repl reads Lox code a line at a time and evaluates it in one session, so
// globals defined on one line are visible on the next.
type repl struct {
	in          io.Reader
	out         io.Writer
	session     *lox.Session
	historyPath string
	log         zerolog.Logger
	timing      bool
}

func newRepl(in io.Reader, out io.Writer, cfg *settings) *repl {
	opts := []lox.Option{lox.WithOutput(out)}
	if cfg.StackSize > 0 {
		opts = append(opts, lox.WithStackSize(cfg.StackSize))
	}
	return &repl{
		in:          in,
		out:         out,
		session:     lox.NewSession(opts...),
		historyPath: cfg.HistoryFile,
		log:         zerolog.Nop(),
	}
}

func (r *repl) run() error {
	scanner := bufio.NewScanner(r.in)
	var pending strings.Builder
	r.prompt(">>> ")
	for scanner.Scan() {
		line := scanner.Text()
		if pending.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			if quit := r.command(strings.TrimSpace(line)); quit {
				return nil
			}
			r.prompt(">>> ")
			continue
		}

		pending.WriteString(line)
		pending.WriteString("\n")
		source := pending.String()

		start := time.Now()
		result, err := r.session.Eval(source)
		elapsed := time.Since(start)
		r.log.Debug().Dur("duration", elapsed).Stringer("result", lox.ResultOf(err)).Msg("line evaluated")

		// An empty line ends multi-line input even if it is still incomplete
		if err != nil && isIncompleteInput(err) && strings.TrimSpace(line) != "" {
			r.prompt("... ")
			continue
		}
		pending.Reset()

		if trimmed := strings.TrimSpace(source); trimmed != "" {
			appendToHistory(r.historyPath, trimmed)
		}
		if err != nil {
			fmt.Fprintln(r.out, errorColor.Sprint(err.Error()))
		} else if !result.IsNil() {
			fmt.Fprintln(r.out, resultColor.Sprint(result.Inspect()))
		}
		if r.timing {
			fmt.Fprintln(r.out, mutedColor.Sprint(elapsed))
		}
		r.prompt(">>> ")
	}
	fmt.Fprintln(r.out)
	return scanner.Err()
}

func (r *repl) prompt(p string) {
	fmt.Fprint(r.out, promptColor.Sprint(p))
}

// command runs a REPL command and reports whether the REPL should exit.
func (r *repl) command(input string) bool {
	parts := strings.Fields(input)
	switch strings.ToLower(parts[0]) {
	case ":quit", ":q":
		return true
	case ":reset":
		if err := r.session.Reset(); err != nil {
			fmt.Fprintln(r.out, errorColor.Sprint(err.Error()))
		}
	case ":globals", ":g":
		globals := r.session.Globals()
		names := make([]string, 0, len(globals))
		for name := range globals {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(r.out, "%s = %s\n", name, resultColor.Sprint(globals[name].Inspect()))
		}
	case ":timing":
		r.timing = !r.timing
		fmt.Fprintln(r.out, mutedColor.Sprintf("timing %t", r.timing))
	case ":help", ":h":
		fmt.Fprintln(r.out, mutedColor.Sprint(strings.Join([]string{
			":globals  list global variables",
			":reset    forget all global variables",
			":timing   toggle execution timing",
			":quit     exit the REPL",
		}, "\n")))
	default:
		fmt.Fprintln(r.out, errorColor.Sprintf("unknown command: %s", parts[0]))
	}
	return false
}

// isIncompleteInput reports whether compilation failed only because the
// input ended early, so more lines may complete it.
func isIncompleteInput(err error) bool {
	errs := errz.CompileErrors(err)
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if e.Where != " at end" && e.Message != "Unterminated string." {
			return false
		}
	}
	return true
}

func appendToHistory(path, line string) {
	if path == "" || line == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(line + "\n")
}
