package app

import (
	"codeflow/internal/core/ports"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const contentCacheSize = 256

var _ ports.ContentSource = (*FileContent)(nil)

// FileContent reads source files for search previews from a root directory
// and keeps recently read contents in memory until the next reload.
type FileContent struct {
	root  string
	cache *lru.Cache[string, string]
}

func NewFileContent(root string, size int) *FileContent {
	cache, _ := lru.New[string, string](max(1, size))
	return &FileContent{root: root, cache: cache}
}

func (c *FileContent) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.root == "" {
		return "", fmt.Errorf("no content root configured")
	}
	if content, ok := c.cache.Get(path); ok {
		return content, nil
	}
	full := filepath.Join(c.root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
	rel, err := filepath.Rel(c.root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q escapes content root", path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	content := string(data)
	c.cache.Add(path, content)
	return content, nil
}

// Purge drops every cached file.
func (c *FileContent) Purge() {
	c.cache.Purge()
}
