package io

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/alterfero/dig4el-sub001/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// IOSourceLoader loads source documents from the local filesystem with caching.
type IOSourceLoader struct {
	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewIOSourceLoader creates a new filesystem-based loader.
func NewIOSourceLoader() *IOSourceLoader {
	return &IOSourceLoader{
		cache: make(map[string][]byte),
	}
}

// GetFileBytes reads the file content from the filesystem. Results are cached.
func (l *IOSourceLoader) GetFileBytes(ctx context.Context, file loader.SourceFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := os.ReadFile(file.FilePath)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = result
		l.cacheMu.Unlock()

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// List walks a directory, or returns a single file, and keeps JSON documents.
func (l *IOSourceLoader) List(ctx context.Context, prefix string) ([]string, error) {
	info, err := os.Stat(prefix)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{prefix}, nil
	}

	var paths []string
	err = filepath.WalkDir(prefix, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && loader.IsSourceDocument(p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loader.SortPaths(paths), nil
}
