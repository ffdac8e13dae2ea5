package loxtest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	expectOutputRe       = regexp.MustCompile(`// expect: ?(.*)`)
	expectRuntimeErrorRe = regexp.MustCompile(`// expect runtime error: (.+)`)
	expectErrorRe        = regexp.MustCompile(`// (Error.*)`)
	expectLineErrorRe    = regexp.MustCompile(`// \[line (\d+)\] (Error.*)`)
)

// OutputLine is a line the script is expected to print.
type OutputLine struct {
	Text string
	Line int
}

// Expectations are the behaviors a script declares in its comments.
type Expectations struct {
	Output        []OutputLine
	CompileErrors []string
	RuntimeError  string
	RuntimeLine   int
}

// ParseExpectations extracts expectations from script comments.
func ParseExpectations(source string) (*Expectations, error) {
	e := &Expectations{}
	for i, text := range strings.Split(source, "\n") {
		line := i + 1
		if m := expectOutputRe.FindStringSubmatch(text); m != nil {
			e.Output = append(e.Output, OutputLine{Text: m[1], Line: line})
			continue
		}
		if m := expectRuntimeErrorRe.FindStringSubmatch(text); m != nil {
			if e.RuntimeError != "" {
				return nil, fmt.Errorf("line %d: more than one runtime error expected", line)
			}
			e.RuntimeError = m[1]
			e.RuntimeLine = line
			continue
		}
		if m := expectLineErrorRe.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			e.CompileErrors = append(e.CompileErrors, fmt.Sprintf("[line %d] %s", n, m[2]))
			continue
		}
		if m := expectErrorRe.FindStringSubmatch(text); m != nil {
			e.CompileErrors = append(e.CompileErrors, fmt.Sprintf("[line %d] %s", line, m[1]))
		}
	}
	if e.RuntimeError != "" && len(e.CompileErrors) > 0 {
		return nil, fmt.Errorf("line %d: cannot expect both compile and runtime errors", e.RuntimeLine)
	}
	return e, nil
}
