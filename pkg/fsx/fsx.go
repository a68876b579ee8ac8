package fsx

import (
	"context"
	"io"
)

// FileReader reads stored files.
type FileReader interface {
	// ReadFile reads the whole file into memory.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// ReadFileStream opens the file for sequential reading.
	// The caller must close the returned reader.
	ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileSystem is the storage abstraction used by services.
type FileSystem interface {
	FileReader

	// WriteFile stores data under path, overwriting any existing file.
	WriteFile(ctx context.Context, path string, data []byte) error

	// WriteFileStream stores the contents of r under path.
	WriteFileStream(ctx context.Context, path string, r io.Reader) error

	// DeleteFile removes the file at path. Removing a missing file is
	// not an error.
	DeleteFile(ctx context.Context, path string) error

	// Exists reports whether a file is stored at path.
	Exists(ctx context.Context, path string) (bool, error)
}
