package loxtest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/deepnoodle-ai/lox"
	"github.com/deepnoodle-ai/lox/errz"
)

// Config holds configuration for running scripts.
type Config struct {
	// Patterns specifies files or directories to search for scripts.
	// Default is current directory.
	Patterns []string

	// RunPattern filters scripts to run by path regex.
	RunPattern string

	// StackSize sets the VM stack capacity. Zero uses the default.
	StackSize int
}

// DiscoverFiles finds all *.lox files matching the given patterns. If no
// patterns are provided, searches the current directory. A pattern ending in
// "..." searches recursively.
func DiscoverFiles(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if isScript(path) && !seen[path] {
			files = append(files, path)
			seen[path] = true
		}
	}

	for _, pattern := range patterns {
		// Check if it's a glob pattern
		if strings.Contains(pattern, "*") {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		// Handle "..." suffix for recursive search
		recursive := false
		searchDir := pattern
		if strings.HasSuffix(pattern, "...") {
			recursive = true
			searchDir = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
			if searchDir == "" {
				searchDir = "."
			}
		}

		info, err := os.Stat(searchDir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("path not found: %s", searchDir)
			}
			return nil, err
		}

		if !info.IsDir() {
			add(pattern)
			continue
		}
		if recursive {
			err = filepath.WalkDir(searchDir, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}
		entries, err := os.ReadDir(searchDir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				add(filepath.Join(searchDir, e.Name()))
			}
		}
	}

	return files, nil
}

func isScript(path string) bool {
	return filepath.Ext(path) == ".lox"
}

// Run executes scripts according to the given configuration.
func Run(cfg *Config) (*Summary, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	files, err := DiscoverFiles(cfg.Patterns)
	if err != nil {
		return nil, err
	}

	// Compile run pattern if provided
	var runRe *regexp.Regexp
	if cfg.RunPattern != "" {
		runRe, err = regexp.Compile(cfg.RunPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid run pattern: %w", err)
		}
	}

	summary := &Summary{}
	start := time.Now()
	for _, file := range files {
		if runRe != nil && !runRe.MatchString(file) {
			continue
		}
		summary.Results = append(summary.Results, RunFile(file, cfg.StackSize))
	}
	summary.Duration = time.Since(start)
	summary.ComputeTotals()
	return summary, nil
}

// RunFile runs a single script and checks it against its expectations.
func RunFile(filename string, stackSize int) *TestResult {
	result := &TestResult{Name: filename}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	source, err := os.ReadFile(filename)
	if err != nil {
		result.Status = StatusError
		result.Error = err
		return result
	}
	expect, err := ParseExpectations(string(source))
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Errorf("%s: %w", filename, err)
		return result
	}

	c := &checker{file: filename}
	var out bytes.Buffer
	opts := []lox.Option{lox.WithFilename(filename), lox.WithOutput(&out)}
	if stackSize > 0 {
		opts = append(opts, lox.WithStackSize(stackSize))
	}
	_, err = lox.Eval(string(source), opts...)

	c.checkCompileErrors(expect, err)
	c.checkRuntimeError(expect, err)
	c.checkOutput(expect, out.String())

	result.Failures = c.failures
	if len(c.failures) > 0 {
		result.Status = StatusFailed
	} else {
		result.Status = StatusPassed
	}
	return result
}

type checker struct {
	file     string
	failures []Failure
}

func (c *checker) fail(line int, message, got, want string) {
	c.failures = append(c.failures, Failure{
		Message: message,
		File:    c.file,
		Line:    line,
		Got:     got,
		Want:    want,
	})
}

func (c *checker) checkCompileErrors(expect *Expectations, err error) {
	var got []string
	for _, e := range errz.CompileErrors(err) {
		got = append(got, e.Error())
	}
	want := expect.CompileErrors
	for i := 0; i < max(len(got), len(want)); i++ {
		switch {
		case i >= len(got):
			c.fail(0, "missing expected compile error", "", want[i])
		case i >= len(want):
			c.fail(0, "unexpected compile error", got[i], "")
		case got[i] != want[i]:
			c.fail(0, "compile error mismatch", got[i], want[i])
		}
	}
}

func (c *checker) checkRuntimeError(expect *Expectations, err error) {
	var runtimeErr *errz.RuntimeError
	isRuntime := errors.As(err, &runtimeErr)
	switch {
	case expect.RuntimeError == "" && isRuntime:
		c.fail(runtimeErr.Line, "unexpected runtime error", runtimeErr.Message, "")
	case expect.RuntimeError == "":
	case !isRuntime:
		c.fail(expect.RuntimeLine, "missing expected runtime error", "", expect.RuntimeError)
	case runtimeErr.Message != expect.RuntimeError:
		c.fail(expect.RuntimeLine, "runtime error mismatch", runtimeErr.Message, expect.RuntimeError)
	case runtimeErr.Line != expect.RuntimeLine:
		c.fail(expect.RuntimeLine, "runtime error on wrong line",
			fmt.Sprintf("line %d", runtimeErr.Line), fmt.Sprintf("line %d", expect.RuntimeLine))
	}
}

func (c *checker) checkOutput(expect *Expectations, output string) {
	var got []string
	if output != "" {
		got = strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	}
	want := expect.Output
	for i := 0; i < max(len(got), len(want)); i++ {
		switch {
		case i >= len(got):
			c.fail(want[i].Line, "missing expected output", "", want[i].Text)
		case i >= len(want):
			c.fail(0, "unexpected output", got[i], "")
		case got[i] != want[i].Text:
			c.fail(want[i].Line, "output mismatch", got[i], want[i].Text)
		}
	}
}
