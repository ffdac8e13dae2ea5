package lox_test

import (
	"bytes"
	"testing"

	"github.com/deepnoodle-ai/lox/loxtest"
	"github.com/deepnoodle-ai/wonton/assert"
)

func TestScripts(t *testing.T) {
	summary, err := loxtest.Run(&loxtest.Config{Patterns: []string{"testdata/..."}})
	assert.Nil(t, err)
	assert.Equal(t, summary.TotalTests(), 11)
	if !summary.Success() {
		var buf bytes.Buffer
		loxtest.NewOutput(loxtest.OutputConfig{Writer: &buf}).PrintResults(summary)
		t.Fatal(buf.String())
	}
}
