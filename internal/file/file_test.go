package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := ExpandPath("~/.config/subspace/config.json")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config/subspace/config.json"), expanded)

	unchanged, err := ExpandPath("/etc/subspace.json")
	require.NoError(t, err)
	require.Equal(t, "/etc/subspace.json", unchanged)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", ".env")

	ok, err := Exists(path)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, CreateParentDirectory(path))
	require.NoError(t, os.WriteFile(path, []byte("A=1\n"), 0644))

	ok, err = Exists(path)
	require.NoError(t, err)
	require.True(t, ok)

	// Directories are not files.
	ok, err = Exists(dir)
	require.NoError(t, err)
	require.False(t, ok)
}
