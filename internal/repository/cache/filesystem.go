package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jaennil/brutile/internal/tiling"
)

// FilesystemCache stores tiles as root/level/col/row[.ext].
type FilesystemCache struct {
	root string
	ext  string
}

var _ TileCache = (*FilesystemCache)(nil)

func NewFilesystemCache(root, ext string) *FilesystemCache {
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	return &FilesystemCache{
		root: root,
		ext:  ext,
	}
}

func (c *FilesystemCache) Find(_ context.Context, k tiling.TileIndex) ([]byte, bool, error) {
	content, err := os.ReadFile(c.path(k))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("filesystem cache read: %w", err)
	}

	return content, true, nil
}

// Add writes to a temp file and renames it so readers never see a partial tile.
func (c *FilesystemCache) Add(_ context.Context, k tiling.TileIndex, v []byte) error {
	p := c.path(k)
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("filesystem cache mkdir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".tile-*")
	if err != nil {
		return fmt.Errorf("filesystem cache create: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("filesystem cache write: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("filesystem cache close: %w", err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("filesystem cache chmod: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("filesystem cache rename: %w", err)
	}

	return nil
}

func (c *FilesystemCache) path(k tiling.TileIndex) string {
	return filepath.Join(c.root, strconv.Itoa(k.Level), strconv.Itoa(k.Col), strconv.Itoa(k.Row)+c.ext)
}
