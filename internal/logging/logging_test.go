package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.log")

	logger, err := NewFile(path, true)
	require.NoError(t, err)
	logger.Debug("autosave", zap.String("row_id", "abc"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"autosave"`)
	assert.Contains(t, string(data), `"row_id":"abc"`)
}

func TestNewFileLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.log")

	logger, err := NewFile(path, false)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewFileEmptyPathIsNop(t *testing.T) {
	logger, err := NewFile("", false)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
