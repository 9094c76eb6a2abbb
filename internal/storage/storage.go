package storage

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alterfero/dig4el-sub001/internal/util"
	"github.com/alterfero/dig4el-sub001/pkg/loader"
	ioloader "github.com/alterfero/dig4el-sub001/pkg/loader/io"
	s3loader "github.com/alterfero/dig4el-sub001/pkg/loader/s3"
	"github.com/alterfero/dig4el-sub001/pkg/store"
	filestore "github.com/alterfero/dig4el-sub001/pkg/store/file"
	pgxstore "github.com/alterfero/dig4el-sub001/pkg/store/pgx"
	s3store "github.com/alterfero/dig4el-sub001/pkg/store/s3"
)

const (
	BackendFile     = "file"
	BackendPostgres = "pgx"
	BackendS3       = "s3"
)

// Clients carries the connections a backend may need. Unused fields stay nil.
type Clients struct {
	Pool *pgxpool.Pool
	S3   *s3.Client
}

// SnapshotBackend returns the configured snapshot backend (STORE_BACKEND).
func SnapshotBackend() string {
	return strings.ToLower(util.GetEnvString("STORE_BACKEND", BackendFile))
}

// SourceBackend returns the configured source backend (SOURCE_BACKEND).
func SourceBackend() string {
	return strings.ToLower(util.GetEnvString("SOURCE_BACKEND", BackendFile))
}

// NewSnapshotStore opens the snapshot store for backend.
func NewSnapshotStore(backend string, c Clients) (store.SnapshotStorage, error) {
	switch backend {
	case BackendFile:
		s, err := filestore.NewSnapshotFileStorage(util.GetEnvString("SNAPSHOT_DIR", "data/snapshots"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		if c.Pool == nil {
			return nil, fmt.Errorf("backend %q needs a database pool", backend)
		}
		return pgxstore.NewSnapshotDBStorageWithConnection(c.Pool), nil
	case BackendS3:
		if c.S3 == nil {
			return nil, fmt.Errorf("backend %q needs an s3 client", backend)
		}
		return s3store.NewSnapshotS3Storage(
			c.S3,
			util.GetEnvString("AWS_BUCKET", "dig4el"),
			util.GetEnvString("SNAPSHOT_PREFIX", "snapshots"),
		), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", backend)
	}
}

// NewSourceLoader returns the loader for questionnaire and recording files.
func NewSourceLoader(backend string, c Clients) (loader.SourceLoader, error) {
	switch backend {
	case BackendFile:
		return ioloader.NewIOSourceLoader(), nil
	case BackendS3:
		if c.S3 == nil {
			return nil, fmt.Errorf("backend %q needs an s3 client", backend)
		}
		return s3loader.NewS3SourceLoaderWithClient(util.GetEnvString("AWS_BUCKET", "dig4el"), c.S3), nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", backend)
	}
}
