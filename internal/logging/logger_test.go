package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert := assert.New(t)

	lvl, err := ParseLevel("warn")
	assert.NoError(err)
	assert.Equal(LevelWarn, lvl)

	lvl, err = ParseLevel("")
	assert.NoError(err)
	assert.Equal(LevelInfo, lvl)

	_, err = ParseLevel("loud")
	assert.Error(err)
}

func TestLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "globex.log")

	l, err := NewLogger(LevelInfo, path)
	require.NoError(t, err)

	l.Debug("hidden %d", 1)
	l.Info("punished %s", "user-1")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "punished user-1")
	assert.NotContains(t, string(data), "hidden")
}

func TestLogRotation(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "globex.log")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	lr := NewLogRotation(8, time.Hour, 2)
	lr.now = func() time.Time { return now }

	assert.True(lr.ShouldRotate(path))
	assert.False(lr.ShouldRotate(filepath.Join(dir, "missing.log")))

	archived, err := lr.Rotate(path)
	require.NoError(t, err)
	assert.Equal(filepath.Join(dir, "globex-20260102-030405.log"), archived)
	assert.NoFileExists(path)

	for i := 1; i <= 2; i++ {
		now = now.Add(time.Minute)
		require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))
		_, err := lr.Rotate(path)
		require.NoError(t, err)
	}

	archives, err := filepath.Glob(filepath.Join(dir, "globex-*.log"))
	require.NoError(t, err)
	assert.Len(archives, 2)
	assert.NotContains(archives, archived)
}
