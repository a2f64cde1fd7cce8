package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQuietWithoutFileIsNop(t *testing.T) {
	l := New(Options{Quiet: true})
	assert.False(t, l.Core().Enabled(zap.ErrorLevel))
}

func TestFileGetsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subkana.log")
	l := New(Options{Quiet: true, File: path})
	l.Debug("analysis started", zap.String("sentence", "こんにちは"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(data, &line))
	assert.Equal(t, "analysis started", line["msg"])
	assert.Equal(t, "こんにちは", line["sentence"])
	assert.Contains(t, line, "timestamp")
}

func TestConsoleLevel(t *testing.T) {
	assert.False(t, New(Options{}).Core().Enabled(zap.InfoLevel))
	assert.True(t, New(Options{Verbose: true}).Core().Enabled(zap.DebugLevel))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
