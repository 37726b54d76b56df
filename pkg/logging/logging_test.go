package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/cellar/pkg/paths"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv(paths.EnvCellarStateDir, tempDir)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "cellar.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should exist at %s", logPath)
		})
	}
}

func TestLogFilePath(t *testing.T) {
	t.Run("with CELLAR_STATE_DIR", func(t *testing.T) {
		t.Setenv(paths.EnvCellarStateDir, "/custom/state")
		assert.Equal(t, "/custom/state/cellar.log", LogFilePath())
	})

	t.Run("xdg state home", func(t *testing.T) {
		t.Setenv(paths.EnvCellarStateDir, "")
		got := LogFilePath()
		assert.True(t, filepath.IsAbs(got), got)
		assert.True(t, strings.HasSuffix(got, filepath.Join("cellar", "cellar.log")), got)
	})
}

func TestLineWriter(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var out bytes.Buffer
	logger := zerolog.New(&out)

	w := NewLineWriter(logger, "stdout")
	_, err := w.Write([]byte("-- Configuring done\n-- Generating"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Configuring done")
	assert.Contains(t, lines[0], `"stream":"stdout"`)

	_, err = w.Write([]byte(" done\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "-- Generating done")

	_, _ = w.Write([]byte("tail without newline"))
	w.Flush()
	assert.Contains(t, out.String(), "tail without newline")
}

func TestLogOperationStart(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var out bytes.Buffer
	logger := zerolog.New(&out)

	done := LogOperationStart(logger, "fetch")
	done()

	assert.Contains(t, out.String(), "Operation started")
	assert.Contains(t, out.String(), "Operation completed")
}
