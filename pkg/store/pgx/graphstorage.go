package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// SnapshotDBStorage implements store.SnapshotStorage on PostgreSQL. The
// snapshot metadata lives in one row and every entry in its own row.
type SnapshotDBStorage struct {
	conn      pgxIConn
	chunkSize int
}

type SnapshotDBStorageOption func(*SnapshotDBStorage)

// WithChunkSize sets how many entries are sent per insert batch.
func WithChunkSize(n int) SnapshotDBStorageOption {
	return func(s *SnapshotDBStorage) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// NewSnapshotDBStorageWithConnection creates a storage on an existing pool or
// connection.
func NewSnapshotDBStorageWithConnection(conn pgxIConn, opts ...SnapshotDBStorageOption) *SnapshotDBStorage {
	s := &SnapshotDBStorage{
		conn:      conn,
		chunkSize: 1000,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}
