package iox

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteStreamToFile(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "out.txt")
	require.NoError(t, WriteStreamToFile(fn, strings.NewReader("hello")))
	b, err := os.ReadFile(fn)
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))

	// Overwrite
	require.NoError(t, WriteStreamToFile(fn, strings.NewReader("bye")))
	b, err = os.ReadFile(fn)
	require.NoError(t, err)
	require.Equal(t, "bye", string(b))
}

func TestWriteFileFailure(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(fn, []byte("original"), 0644))

	failed := errors.New("failed")
	err := WriteFile(fn, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return failed
	})
	require.ErrorIs(t, err, failed)

	// The original survives, and no temporary file is left over
	b, err := os.ReadFile(fn)
	require.NoError(t, err)
	require.Equal(t, "original", string(b))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Error(t, WriteStreamToFile(filepath.Join(dir, "missing", "out.txt"), strings.NewReader("x")))
}
