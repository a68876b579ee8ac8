package fsxlocal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abraxas-365/deckgen/pkg/fsx"
)

// LocalFileSystem implements fsx.FileSystem on a local directory.
// Used for development and tests; production wiring uses fsxs3.
type LocalFileSystem struct {
	root string
}

// NewLocalFileSystem creates a file system rooted at dir.
func NewLocalFileSystem(dir string) fsx.FileSystem {
	return &LocalFileSystem{root: dir}
}

func (f *LocalFileSystem) resolve(path string) string {
	return filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
}

func (f *LocalFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(f.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	return data, nil
}

func (f *LocalFileSystem) ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(f.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	return file, nil
}

func (f *LocalFileSystem) WriteFile(ctx context.Context, path string, data []byte) error {
	full := f.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}

func (f *LocalFileSystem) WriteFileStream(ctx context.Context, path string, r io.Reader) error {
	full := f.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	file, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}

func (f *LocalFileSystem) DeleteFile(ctx context.Context, path string) error {
	if err := os.Remove(f.resolve(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file %s: %w", path, err)
	}
	return nil
}

func (f *LocalFileSystem) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(f.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat file %s: %w", path, err)
	}
	return true, nil
}
