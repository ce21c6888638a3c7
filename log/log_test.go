package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alloycalc.log")
	var console bytes.Buffer

	h := newHandler(path, false, &console)
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))

	slog.New(h).Info("computed", "alloy", "CoCrFeMnNi")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "alloy=CoCrFeMnNi")
	assert.Zero(t, console.Len())
}

func TestDebugHandler(t *testing.T) {
	var console bytes.Buffer

	h := newHandler(filepath.Join(t.TempDir(), "unused.log"), true, &console)
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	slog.New(h).Debug("lookup", "symbol", "Fe")
	assert.Contains(t, console.String(), "lookup")
	assert.Contains(t, console.String(), "Fe")
}
