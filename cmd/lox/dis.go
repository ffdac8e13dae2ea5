package main

import (
	"os"

	"github.com/deepnoodle-ai/lox/dis"
	"github.com/deepnoodle-ai/wonton/cli"
)

func disHandler(ctx *cli.Context) error {
	_, log, err := setup(ctx)
	if err != nil {
		return err
	}

	// Get code from -c flag, --stdin, or file argument
	in, err := getInput(ctx, true)
	if err != nil {
		return err
	}
	chunk, err := loadChunk(in, log)
	if err != nil {
		return err
	}

	if !ctx.Bool("table") {
		dis.Disassemble(os.Stdout, chunk, chunk.Name())
		return nil
	}
	instructions, err := dis.Instructions(chunk)
	if err != nil {
		return err
	}
	dis.Print(instructions, os.Stdout)
	return nil
}

func tokensHandler(ctx *cli.Context) error {
	if _, _, err := setup(ctx); err != nil {
		return err
	}
	in, err := getInput(ctx, true)
	if err != nil {
		return err
	}
	dis.Tokens(os.Stdout, string(in.data))
	return nil
}
