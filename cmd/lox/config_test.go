package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/rs/zerolog"
)

func TestNewConfigDefaults(t *testing.T) {
	isolate(t)
	v, err := newConfig("")
	assert.Nil(t, err)
	assert.Equal(t, v.GetInt("stack_size"), 0)
	assert.Equal(t, v.GetString("log_level"), "warn")
	assert.Equal(t, v.GetString("history_file"), defaultHistoryFile)
}

func TestNewConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "lox.yaml")
	assert.Nil(t, os.WriteFile(path, []byte("stack_size: 512\nlog_level: debug\n"), 0o644))

	v, err := newConfig(path)
	assert.Nil(t, err)
	assert.Equal(t, v.GetInt("stack_size"), 512)
	assert.Equal(t, v.GetString("log_level"), "debug")
}

func TestNewConfigHomeFile(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")
	assert.Nil(t, os.WriteFile(filepath.Join(home, ".lox.yaml"), []byte("no_color: true\n"), 0o644))

	v, err := newConfig("")
	assert.Nil(t, err)
	assert.True(t, v.GetBool("no_color"))
}

func TestNewConfigEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "lox.yaml")
	assert.Nil(t, os.WriteFile(path, []byte("stack_size: 512\n"), 0o644))
	t.Setenv("LOX_STACK_SIZE", "1024")

	v, err := newConfig(path)
	assert.Nil(t, err)
	assert.Equal(t, v.GetInt("stack_size"), 1024)
}

func TestNewConfigMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := newConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)
}

func TestConfigStackSize(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "lox.yaml")
	assert.Nil(t, os.WriteFile(path, []byte("stack_size: 1024\n"), 0o644))

	deep := "1"
	for i := 0; i < 300; i++ {
		deep = "1 + (" + deep + ")"
	}
	_, err := executeCaptured(t, "-c", deep)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Stack overflow.")

	output, err := executeCaptured(t, "--config", path, "-c", deep)
	assert.Nil(t, err)
	assert.Equal(t, output, "301\n")

	output, err = executeCaptured(t, "--stack-size", "2048", "-c", deep)
	assert.Nil(t, err)
	assert.Equal(t, output, "301\n")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "", true)
	assert.Nil(t, err)
	assert.Equal(t, log.GetLevel(), zerolog.WarnLevel)

	log, err = newLogger(&buf, "DEBUG", true)
	assert.Nil(t, err)
	assert.Equal(t, log.GetLevel(), zerolog.DebugLevel)
	log.Debug().Int("bytes", 3).Msg("chunk compiled")
	assert.Contains(t, buf.String(), "chunk compiled")
	assert.Contains(t, buf.String(), "bytes=3")

	_, err = newLogger(&buf, "loud", true)
	assert.NotNil(t, err)
	assert.Equal(t, exitCode(err), exitUsage)
}
