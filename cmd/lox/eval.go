package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deepnoodle-ai/lox"
	"github.com/deepnoodle-ai/wonton/cli"
)

func evalHandler(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}

	// Get expression from -c flag, --stdin, or positional argument
	expr, err := getEvalExpr(ctx)
	if err != nil {
		return err
	}

	outputFormat := ctx.String("output")
	quiet := ctx.Bool("quiet")

	result, err := lox.Eval(expr, runOptions(cfg)...)
	log.Debug().Stringer("result", lox.ResultOf(err)).Msg("eval finished")
	if err != nil {
		if outputFormat == "json" {
			out := map[string]any{
				"error":  err.Error(),
				"result": lox.ResultOf(err).String(),
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(out); encErr != nil {
				return encErr
			}
			return withExitCode(runResultCode(err), errors.New("evaluation failed"))
		}
		return withExitCode(runResultCode(err), err)
	}

	if quiet {
		return nil
	}

	// Output result
	if outputFormat == "json" {
		out := map[string]any{
			"value": result.Interface(),
			"type":  result.Type().String(),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	// Default text output
	if !result.IsNil() {
		fmt.Println(result.Inspect())
	}
	return nil
}

func getEvalExpr(ctx *cli.Context) (string, error) {
	codeSet := ctx.IsSet("code")
	stdinSet := ctx.Bool("stdin")
	exprProvided := ctx.Arg(0) != ""

	// Check for conflicting input sources
	count := 0
	if codeSet {
		count++
	}
	if stdinSet {
		count++
	}
	if exprProvided {
		count++
	}
	if count > 1 {
		return "", withExitCode(exitUsage, errors.New("multiple input sources specified"))
	}
	if count == 0 {
		return "", withExitCode(exitUsage, errors.New("no expression provided"))
	}

	if stdinSet {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", withExitCode(exitIO, err)
		}
		return string(data), nil
	}

	if exprProvided {
		return ctx.Arg(0), nil
	}

	return ctx.String("code"), nil
}
