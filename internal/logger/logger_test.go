package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.log")

	l := Init(Options{Level: "debug", File: path})
	l.Info().Str("owner", "ana@example.com").Msg("todo created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"owner":"ana@example.com"`)
	assert.Contains(t, string(data), `"message":"todo created"`)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInitFallsBackToInfo(t *testing.T) {
	Init(Options{Level: "chatty"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
