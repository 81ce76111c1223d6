package tempfile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	path, cleanup, err := Write(dir, "input-*.webm", []byte("audio"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// a second cleanup is harmless
	cleanup()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReserve(t *testing.T) {
	dir := t.TempDir()

	path, cleanup, err := Reserve(dir, "output-*.mp3")
	require.NoError(t, err)
	defer cleanup()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWrite_MissingDir(t *testing.T) {
	_, cleanup, err := Write("/nonexistent/dir/for/test", "x-*", []byte("a"))
	assert.Error(t, err)
	cleanup()
}
