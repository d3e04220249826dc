// ABOUTME: Local directory asset fetcher
// ABOUTME: Reads segments from disk for offline use and tests
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirFetcher reads resources below Root
type DirFetcher struct {
	Root string
}

// NewDirFetcher creates a fetcher rooted at dir
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{Root: dir}
}

// Fetch reads name from disk
func (f *DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(f.Root, filepath.FromSlash(name))
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
