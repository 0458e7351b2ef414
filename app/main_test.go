package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func Test_setupLogsWithLogsDisabled(t *testing.T) {
	opts.Log.Enabled = false
	assert.Equal(t, os.Stdout, setupLogs())
}

func Test_setupLogsToStdout(t *testing.T) {
	opts.Log.Enabled = true
	opts.Log.Filename = ""
	assert.Equal(t, os.Stdout, setupLogs())
}

func Test_setupLogsToFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	opts.Log.Enabled = true
	opts.Log.Filename = tmpfile.Name()
	opts.Log.MaxSize = 100
	opts.Log.MaxBackups = 7
	opts.Log.MaxAge = 0
	opts.Log.EnabledCompress = false

	out := setupLogs()
	assert.IsType(t, &lumberjack.Logger{}, out)

	logger := out.(*lumberjack.Logger)
	assert.Equal(t, tmpfile.Name(), logger.Filename)
	assert.Equal(t, 100, logger.MaxSize)
	assert.Equal(t, 7, logger.MaxBackups)
	assert.Equal(t, 0, logger.MaxAge)
	assert.False(t, logger.Compress)
}

func Test_run_FailsOnBadDBPath(t *testing.T) {
	opts.DB = "/invalid/path/that/does/not/exist/test.db"
	opts.Seed = ""

	err := run(t.Context())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create store")
}

func Test_run_FailsOnMissingSeedFile(t *testing.T) {
	opts.DB = filepath.Join(t.TempDir(), "test.db")
	opts.Seed = "/does/not/exist.yml"

	err := run(t.Context())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "seeding failed")
}
