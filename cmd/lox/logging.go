package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

func newLogger(w io.Writer, level string, noColor bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), withExitCode(exitUsage, fmt.Errorf("invalid log level: %q", level))
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	output := zerolog.ConsoleWriter{Out: w, NoColor: noColor}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger(), nil
}
