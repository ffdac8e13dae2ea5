package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/deepnoodle-ai/lox/value"
	"github.com/deepnoodle-ai/wonton/color"
	"github.com/hokaccha/go-prettyjson"
)

func formatOutput(format string, noColor bool, result value.Value) (string, error) {
	switch strings.ToLower(format) {
	case "":
		// With an unspecified format, we'll try to do the most helpful thing:
		//  1. If the result is nil, we want to print nothing
		//  2. If the result marshals to JSON, we'll print that
		//  3. Otherwise, we'll print the result's string representation
		if result.IsNil() {
			return "", nil
		}
		output, err := formatJSON(result, noColor)
		if err != nil {
			return result.Inspect(), nil
		}
		return string(output), nil
	case "json":
		output, err := formatJSON(result, noColor)
		if err != nil {
			return "", err
		}
		return string(output), nil
	case "text":
		return result.Inspect(), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func formatJSON(result any, noColor bool) ([]byte, error) {
	if noColor || !color.Enabled || !color.ShouldColorize(os.Stdout) {
		return json.MarshalIndent(result, "", "  ")
	}
	return prettyjson.Marshal(result)
}
