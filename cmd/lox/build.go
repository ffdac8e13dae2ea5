package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/deepnoodle-ai/wonton/cli"
)

func buildHandler(ctx *cli.Context) error {
	_, log, err := setup(ctx)
	if err != nil {
		return err
	}

	path := ctx.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return withExitCode(exitIO, err)
	}
	in := &input{name: path, data: data}
	if in.compiled() {
		return withExitCode(exitUsage, fmt.Errorf("%s is already compiled", path))
	}
	chunk, err := loadChunk(in, log)
	if err != nil {
		return err
	}
	encoded, err := chunk.MarshalBinary()
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if out == "" {
		out = compiledPath(path)
	}
	if err := os.WriteFile(out, encoded, 0o644); err != nil {
		return withExitCode(exitIO, err)
	}
	log.Info().Str("path", out).Int("bytes", len(encoded)).Msg("chunk written")
	return nil
}

// compiledPath returns the default output path for a source file.
func compiledPath(path string) string {
	return strings.TrimSuffix(path, ".lox") + compiledExt
}
