// Package loxtest runs Lox scripts that declare their expected behavior in
// comments and reports the results in the style of go test.
//
// A script states what it should print and how it should fail:
//
//	print 1 + 2; // expect: 3
//	print -nil;  // expect runtime error: Operand must be a number.
//	var = 1;     // Error at '=': Expect variable name.
//
// Compile error expectations may name another line explicitly with
// "// [line N] Error ...".
package loxtest

import "time"

// Status represents the outcome of a test.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusError
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "PASS"
	case StatusFailed:
		return "FAIL"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Failure describes one way a script's behavior differed from its
// expectations.
type Failure struct {
	Message string // Description of the failure
	File    string // Script filename
	Line    int    // Line of the expectation, if any
	Got     string // Actual value (may be empty)
	Want    string // Expected value (may be empty)
}

// TestResult holds the outcome of a single script.
type TestResult struct {
	Name     string        // Script path
	Status   Status        // Pass, fail or error
	Duration time.Duration // How long the script took
	Failures []Failure     // Expectation mismatches
	Error    error         // Error if Status == StatusError
}

// Summary aggregates results across all scripts.
type Summary struct {
	Results  []*TestResult
	Passed   int
	Failed   int
	Errors   int
	Duration time.Duration
}

// TotalTests returns the total number of scripts run.
func (s *Summary) TotalTests() int {
	return s.Passed + s.Failed + s.Errors
}

// Success returns true if every script passed.
func (s *Summary) Success() bool {
	return s.Failed == 0 && s.Errors == 0
}

// ComputeTotals recalculates the aggregate counts from the results.
func (s *Summary) ComputeTotals() {
	s.Passed, s.Failed, s.Errors = 0, 0, 0
	for _, r := range s.Results {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusError:
			s.Errors++
		}
	}
}
