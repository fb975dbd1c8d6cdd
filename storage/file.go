package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const tempFilePrefix = ".stickies-tmp-"

// File keeps the slot in a single file.
type File struct {
	fs   afero.Fs
	path string
}

func NewFile(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Load(ctx context.Context) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", f.path)
	}
	return data, nil
}

func (f *File) Save(ctx context.Context, data []byte) error {
	return writeFileAtomic(f.fs, f.path, data)
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over the target, so readers never see a partial collection.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}

	tmpFile, err := afero.TempFile(fs, dir, tempFilePrefix+"*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpPath := tmpFile.Name()
	defer fs.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "syncing temp file")
	}

	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := fs.Chmod(tmpPath, 0o644); err != nil {
		return errors.Wrap(err, "setting temp file mode")
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "renaming temp file to %s", path)
	}

	return nil
}
