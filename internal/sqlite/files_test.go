package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFileAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "out", "dst.bin")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("first"), 0o644))

	require.NoError(t, copyFileAtomic(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, os.WriteFile(src, []byte("second, longer"), 0o644))
	require.NoError(t, copyFileAtomic(src, dst))
	data, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "second, longer", string(data))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	err = copyFileAtomic(filepath.Join(dir, "missing"), dst)
	assert.Error(t, err)
}

func TestWithinDir(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "data", "attachments")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "file in idea dir", path: filepath.Join(root, "1", "a.txt"), want: true},
		{name: "root itself", path: root, want: false},
		{name: "parent", path: filepath.Dir(root), want: false},
		{name: "sibling with shared prefix", path: root + "-old/a.txt", want: false},
		{name: "dot dot escape", path: root + "/1/../../x", want: false},
		{name: "file named with dots", path: filepath.Join(root, "1", "..hidden"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withinDir(root, tt.path))
		})
	}
}

func TestSameFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))

	assert.True(t, sameFile(a, a))
	assert.True(t, sameFile(a, filepath.Join(dir, ".", "a")))
	assert.False(t, sameFile(a, filepath.Join(dir, "b")))
}
