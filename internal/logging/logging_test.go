package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	logger.WithField("endpoint", "/api/reports/dashboard").Warn("fetch failed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "fetch failed", entry["msg"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "/api/reports/dashboard", entry["endpoint"])
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	logger := New(&bytes.Buffer{}, "loud")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewFile_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "finboard.log")
	logger, closer, err := NewFile(path, "info")
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
