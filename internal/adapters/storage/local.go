package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes downloads into a directory on disk.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the directory if it does not exist.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "./downloads"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes data under filename. An existing file is never overwritten:
// "main.py" becomes "main (1).py", "main (2).py" and so on.
func (s *LocalStorage) Save(ctx context.Context, filename string, data io.Reader) (string, error) {
	name := sanitizeFilename(filename)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	var (
		file *os.File
		path string
		err  error
	)
	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path = filepath.Join(s.basePath, candidate)
		file, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to create file: %w", err)
		}
	}
	if file == nil {
		return "", fmt.Errorf("no free file name for %s in %s", name, s.basePath)
	}

	_, err = io.Copy(file, contextReader{ctx: ctx, r: data})
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path) // Clean up on error
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
