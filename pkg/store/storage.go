package store

import (
	"context"
	"errors"
	"time"

	"github.com/alterfero/dig4el-sub001/pkg/common"
)

var ErrNotFound = errors.New("snapshot not found")

// SnapshotInfo summarises a stored snapshot without its entries.
type SnapshotInfo struct {
	Language   string    `json:"language"`
	Entries    int       `json:"entries"`
	TotalWords int       `json:"total_word_count"`
	BuiltAt    time.Time `json:"built_at"`
}

// SnapshotStorage persists knowledge-graph snapshots keyed by language.
// Saving a language replaces its previous snapshot.
type SnapshotStorage interface {
	SaveSnapshot(ctx context.Context, snapshot *common.Snapshot) error
	LoadSnapshot(ctx context.Context, language string) (*common.Snapshot, error)
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, language string) error
}
