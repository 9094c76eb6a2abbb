package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/store"
)

// SnapshotFileStorage keeps one JSON file per language in a directory.
type SnapshotFileStorage struct {
	dir string
	mu  sync.RWMutex
}

// NewSnapshotFileStorage creates the directory if needed.
func NewSnapshotFileStorage(dir string) (*SnapshotFileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &SnapshotFileStorage{dir: dir}, nil
}

func (s *SnapshotFileStorage) path(language string) string {
	return filepath.Join(s.dir, store.NormalizeLanguage(language)+".json")
}

// SaveSnapshot writes through a temporary file and renames it into place.
func (s *SnapshotFileStorage) SaveSnapshot(ctx context.Context, snapshot *common.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(snapshot.Language)); err != nil {
		return err
	}
	logger.Debug("[Store] Snapshot written", "path", s.path(snapshot.Language))
	return nil
}

func (s *SnapshotFileStorage) LoadSnapshot(ctx context.Context, language string) (*common.Snapshot, error) {
	s.mu.RLock()
	data, err := os.ReadFile(s.path(language))
	s.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", store.ErrNotFound, language)
	}
	if err != nil {
		return nil, err
	}
	var snap common.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.path(language), err)
	}
	return &snap, nil
}

func (s *SnapshotFileStorage) ListSnapshots(ctx context.Context) ([]store.SnapshotInfo, error) {
	s.mu.RLock()
	entries, err := os.ReadDir(s.dir)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	var infos []store.SnapshotInfo
	for _, e := range entries {
		language, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok {
			continue
		}
		snap, err := s.LoadSnapshot(ctx, language)
		if err != nil {
			return nil, err
		}
		infos = append(infos, store.Info(snap))
	}
	return store.SortInfos(infos), nil
}

func (s *SnapshotFileStorage) DeleteSnapshot(ctx context.Context, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(language))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", store.ErrNotFound, language)
	}
	return err
}
