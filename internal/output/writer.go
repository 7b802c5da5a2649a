// Package output persists rendered stub documents.
package output

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// DefaultFilename is the stub file name used when no path is given.
const DefaultFilename = "_ide_helper_subclassed_bundles.php"

// ErrWriteFailure wraps every error raised while saving the document.
var ErrWriteFailure = errors.New("write failure")

// DefaultPath is where the stub file goes when no path is given: one
// directory above the working directory.
func DefaultPath() string {
	return filepath.Join("..", DefaultFilename)
}

// Writer saves documents to a filesystem, replacing existing files.
type Writer struct {
	fs afero.Fs
}

// NewWriter creates a Writer on fs. A nil fs means the OS filesystem.
func NewWriter(fs afero.Fs) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{fs: fs}
}

// Resolve returns the path a Write call with path would target.
func Resolve(path string) string {
	if path == "" {
		return DefaultPath()
	}
	return path
}

// Write saves data to path (DefaultPath when empty) and returns the path it
// wrote. The parent directory must already exist. The content is written to
// a temporary file next to the target and renamed over it.
func (w *Writer) Write(path string, data []byte) (string, error) {
	path = Resolve(path)
	dir := filepath.Dir(path)

	info, err := w.fs.Stat(dir)
	if err != nil {
		return path, fmt.Errorf("%w: %s: %w", ErrWriteFailure, dir, err)
	}
	if !info.IsDir() {
		return path, fmt.Errorf("%w: %s is not a directory", ErrWriteFailure, dir)
	}

	tmp, err := afero.TempFile(w.fs, dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return path, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		w.fs.Remove(tmpName)
		return path, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	if err := tmp.Close(); err != nil {
		w.fs.Remove(tmpName)
		return path, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	if err := w.fs.Chmod(tmpName, 0o644); err != nil {
		w.fs.Remove(tmpName)
		return path, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	if err := w.fs.Rename(tmpName, path); err != nil {
		w.fs.Remove(tmpName)
		return path, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	return path, nil
}
