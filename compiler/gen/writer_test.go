package gen

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSWriter(t *testing.T) {
	t.Run("writes files and tracks metrics", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		w := NewFSWriter(fs)
		dir := filepath.FromSlash("/out/NodeTypes/Foo")
		require.NoError(t, w.EnsureDir(dir))
		require.NoError(t, w.WriteFile(filepath.Join(dir, "FooNodeObject.php"), []byte("abc")))
		require.NoError(t, w.WriteFile(filepath.Join(dir, "FooNodeObject.php"), []byte("abcd")))

		data, err := afero.ReadFile(fs, filepath.Join(dir, "FooNodeObject.php"))
		require.NoError(t, err)
		assert.Equal(t, "abcd", string(data))

		m := w.Metrics()
		assert.Equal(t, 2, m.FilesWritten)
		assert.Equal(t, int64(7), m.TotalBytes)
	})

	t.Run("lists files by suffix in order", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		w := NewFSWriter(fs)
		for _, f := range []string{
			"/out/NodeTypes/B/BNodeObject.php",
			"/out/NodeTypes/A/ANodeInterface.php",
			"/out/NodeTypes/A/ANodeObject.php",
			"/out/NodeTypes/A/Helper.php",
			"/out/Classes/CNodeObject.php",
		} {
			require.NoError(t, w.WriteFile(filepath.FromSlash(f), nil))
		}
		files, err := w.ListFiles(filepath.FromSlash("/out/NodeTypes"), "NodeObject.php", "NodeInterface.php")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.FromSlash("/out/NodeTypes/A/ANodeInterface.php"),
			filepath.FromSlash("/out/NodeTypes/A/ANodeObject.php"),
			filepath.FromSlash("/out/NodeTypes/B/BNodeObject.php"),
		}, files)
	})

	t.Run("missing root lists nothing", func(t *testing.T) {
		files, err := NewFSWriter(afero.NewMemMapFs()).ListFiles("/missing", ".php")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("deletes files", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		w := NewFSWriter(fs)
		require.NoError(t, w.WriteFile("/a.php", []byte("x")))
		require.NoError(t, w.DeleteFile("/a.php"))
		exists, err := afero.Exists(fs, "/a.php")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.Equal(t, 1, w.Metrics().FilesDeleted)
		assert.Error(t, w.DeleteFile("/a.php"))
	})

	t.Run("read only file system", func(t *testing.T) {
		w := NewFSWriter(afero.NewReadOnlyFs(afero.NewMemMapFs()))
		assert.Error(t, w.EnsureDir("/out"))
		assert.Error(t, w.WriteFile("/out/a.php", nil))
	})

	t.Run("os writer", func(t *testing.T) {
		dir := t.TempDir()
		w := NewFSWriter(afero.NewOsFs())
		path := filepath.Join(dir, "NodeTypes", "X", "XNodeObject.php")
		require.NoError(t, w.EnsureDir(filepath.Dir(path)))
		require.NoError(t, w.WriteFile(path, []byte("<?php")))
		files, err := w.ListFiles(dir, "NodeObject.php")
		require.NoError(t, err)
		assert.Equal(t, []string{path}, files)
	})
}
