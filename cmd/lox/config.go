package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/deepnoodle-ai/wonton/cli"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	defaultConfigFile  = "~/.lox.yaml"
	defaultHistoryFile = "~/.lox_history"
)

// settings holds the configuration shared by all commands. Values come from
// the config file, then LOX_* environment variables, then command line flags.
type settings struct {
	StackSize   int
	LogLevel    string
	NoColor     bool
	HistoryFile string
}

func newConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("stack_size", 0)
	v.SetDefault("log_level", "warn")
	v.SetDefault("no_color", false)
	v.SetDefault("history_file", defaultHistoryFile)
	v.SetEnvPrefix("LOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return v, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	v.SetConfigFile(expanded)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return v, nil
}

func loadSettings(ctx *cli.Context) (*settings, error) {
	v, err := newConfig(ctx.String("config"))
	if err != nil {
		return nil, withExitCode(exitIO, err)
	}
	s := &settings{
		StackSize:   v.GetInt("stack_size"),
		LogLevel:    v.GetString("log_level"),
		NoColor:     v.GetBool("no_color"),
		HistoryFile: v.GetString("history_file"),
	}
	if ctx.IsSet("stack-size") {
		s.StackSize = ctx.Int("stack-size")
	}
	if ctx.IsSet("log-level") {
		s.LogLevel = ctx.String("log-level")
	}
	if ctx.Bool("no-color") {
		s.NoColor = true
	}
	if s.StackSize < 0 {
		return nil, withExitCode(exitUsage, fmt.Errorf("invalid stack size: %d", s.StackSize))
	}
	if s.HistoryFile != "" {
		if s.HistoryFile, err = homedir.Expand(s.HistoryFile); err != nil {
			return nil, err
		}
	}
	return s, nil
}
