package output

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/site", 0o755))

	w := NewWriter(fs)
	path, err := w.Write("/site/helper.php", []byte("<?php\n"))
	require.NoError(t, err)
	assert.Equal(t, "/site/helper.php", path)

	content, err := afero.ReadFile(fs, "/site/helper.php")
	require.NoError(t, err)
	assert.Equal(t, "<?php\n", string(content))

	info, err := fs.Stat("/site/helper.php")
	require.NoError(t, err)
	assert.Equal(t, "-rw-r--r--", info.Mode().Perm().String())
}

func TestWriteReplacesExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/site/helper.php", []byte("old content that is longer"), 0o644))

	_, err := NewWriter(fs).Write("/site/helper.php", []byte("new"))
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, "/site/helper.php")
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))

	entries, err := afero.ReadDir(fs, "/site")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestWriteMissingDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()

	path, err := NewWriter(fs).Write("/missing/helper.php", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWriteFailure))
	assert.Equal(t, "/missing/helper.php", path)
}

func TestWriteParentIsFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/site", []byte("file"), 0o644))

	_, err := NewWriter(fs).Write("/site/helper.php", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWriteFailure))
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestWriteReadOnlyFilesystem(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/site", 0o755))

	_, err := NewWriter(afero.NewReadOnlyFs(base)).Write("/site/helper.php", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWriteFailure))

	exists, err := afero.Exists(base, "/site/helper.php")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestResolveDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("..", DefaultFilename), Resolve(""))
	assert.Equal(t, DefaultPath(), Resolve(""))
	assert.Equal(t, "out.php", Resolve("out.php"))
}

func TestWriteOsFilesystem(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, DefaultFilename)

	path, err := NewWriter(nil).Write(target, []byte("<?php\n"))
	require.NoError(t, err)
	assert.Equal(t, target, path)

	content, err := afero.ReadFile(afero.NewOsFs(), target)
	require.NoError(t, err)
	assert.Equal(t, "<?php\n", string(content))
}
