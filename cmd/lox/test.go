package main

import (
	"errors"
	"os"

	"github.com/deepnoodle-ai/lox/loxtest"
	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/deepnoodle-ai/wonton/color"
)

func testHandler(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}

	testCfg := &loxtest.Config{
		Patterns:   ctx.Args(),
		RunPattern: ctx.String("run"),
		StackSize:  cfg.StackSize,
	}
	summary, err := loxtest.Run(testCfg)
	if err != nil {
		return withExitCode(exitUsage, err)
	}
	log.Debug().Int("scripts", summary.TotalTests()).Dur("duration", summary.Duration).Msg("tests finished")

	useColor := !cfg.NoColor && color.ShouldColorize(os.Stdout)
	output := loxtest.NewOutput(loxtest.OutputConfig{
		Writer:   os.Stdout,
		Verbose:  ctx.Bool("verbose"),
		UseColor: useColor,
	})
	output.PrintResults(summary)

	if !summary.Success() {
		return withExitCode(1, errors.New("tests failed"))
	}
	return nil
}
