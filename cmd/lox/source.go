package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/deepnoodle-ai/lox"
	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/rs/zerolog"
)

// compiledExt is the file extension of serialized chunks written by build.
const compiledExt = ".loxc"

// input is Lox code read from a file, the -c flag or stdin.
type input struct {
	name string
	data []byte
}

func (in *input) compiled() bool {
	return filepath.Ext(in.name) == compiledExt
}

// getInput determines what code is to be processed. There are three
// possibilities: --code <code>, --stdin, or a path given as the first
// argument. When required is false and no source is given, the -c flag's
// empty value is used.
func getInput(ctx *cli.Context, required bool) (*input, error) {
	codeSet := ctx.IsSet("code")
	stdinSet := ctx.Bool("stdin")
	fileProvided := ctx.Arg(0) != ""

	// Check for conflicting input sources
	count := 0
	if codeSet {
		count++
	}
	if stdinSet {
		count++
	}
	if fileProvided {
		count++
	}
	if count > 1 {
		return nil, withExitCode(exitUsage, errors.New("multiple input sources specified"))
	}
	if count == 0 && required {
		return nil, withExitCode(exitUsage, errors.New("no input provided"))
	}

	if stdinSet {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, withExitCode(exitIO, err)
		}
		return &input{name: "stdin", data: data}, nil
	}

	if fileProvided {
		data, err := os.ReadFile(ctx.Arg(0))
		if err != nil {
			return nil, withExitCode(exitIO, err)
		}
		return &input{name: ctx.Arg(0), data: data}, nil
	}

	return &input{data: []byte(ctx.String("code"))}, nil
}

// loadChunk compiles source code or decodes a .loxc file.
func loadChunk(in *input, log zerolog.Logger, opts ...lox.Option) (*bytecode.Chunk, error) {
	log.Debug().Str("source", in.name).Int("bytes", len(in.data)).Msg("source read")
	if in.compiled() {
		chunk, err := bytecode.UnmarshalChunk(in.data)
		if err != nil {
			return nil, withExitCode(exitIO, err)
		}
		return chunk, nil
	}
	if in.name != "" {
		opts = append(opts, lox.WithFilename(in.name))
	}
	chunk, err := lox.Compile(string(in.data), opts...)
	if err != nil {
		return nil, withExitCode(exitCompile, err)
	}
	stats := chunk.Stats()
	log.Debug().
		Str("chunk", chunk.Name()).
		Int("bytes", stats.CodeBytes).
		Int("instructions", stats.InstructionCount).
		Int("constants", stats.ConstantCount).
		Msg("chunk compiled")
	return chunk, nil
}
