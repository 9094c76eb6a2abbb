package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/store"
)

const (
	metaEntries    = "entries"
	metaTotalWords = "total-words"
	metaBuiltAt    = "built-at"
)

// ObjectAPI is the subset of the S3 client the store uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// SnapshotS3Storage stores each snapshot as one JSON object. Summary fields
// travel as object metadata so listing does not download snapshots.
type SnapshotS3Storage struct {
	client ObjectAPI
	bucket string
	prefix string
}

// NewSnapshotS3Storage creates a store below prefix in bucket.
func NewSnapshotS3Storage(client ObjectAPI, bucket, prefix string) *SnapshotS3Storage {
	return &SnapshotS3Storage{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *SnapshotS3Storage) key(language string) string {
	return path.Join(s.prefix, store.NormalizeLanguage(language)+".json")
}

func (s *SnapshotS3Storage) SaveSnapshot(ctx context.Context, snapshot *common.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	info := store.Info(snapshot)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(snapshot.Language)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			metaEntries:    strconv.Itoa(info.Entries),
			metaTotalWords: strconv.Itoa(info.TotalWords),
			metaBuiltAt:    info.BuiltAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot to S3: %w", err)
	}
	logger.Debug("[Store] Snapshot uploaded", "key", s.key(snapshot.Language), "bytes", len(data))
	return nil
}

func (s *SnapshotS3Storage) LoadSnapshot(ctx context.Context, language string) (*common.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(language)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %q", store.ErrNotFound, language)
		}
		return nil, fmt.Errorf("failed to get snapshot from S3: %w", err)
	}
	defer out.Body.Close()

	var snap common.Snapshot
	if err := json.NewDecoder(out.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SnapshotS3Storage) ListSnapshots(ctx context.Context) ([]store.SnapshotInfo, error) {
	var infos []store.SnapshotInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.listPrefix()),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name, ok := strings.CutSuffix(path.Base(key), ".json")
			if !ok {
				continue
			}
			head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to read snapshot metadata: %w", err)
			}
			infos = append(infos, infoFromMetadata(name, head.Metadata))
		}
	}
	return store.SortInfos(infos), nil
}

func (s *SnapshotS3Storage) DeleteSnapshot(ctx context.Context, language string) error {
	key := s.key(language)
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %q", store.ErrNotFound, language)
		}
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete snapshot from S3: %w", err)
	}
	return nil
}

func (s *SnapshotS3Storage) listPrefix() string {
	if s.prefix == "" {
		return ""
	}
	return s.prefix + "/"
}

func infoFromMetadata(language string, meta map[string]string) store.SnapshotInfo {
	info := store.SnapshotInfo{Language: language}
	info.Entries, _ = strconv.Atoi(meta[metaEntries])
	info.TotalWords, _ = strconv.Atoi(meta[metaTotalWords])
	info.BuiltAt, _ = time.Parse(time.RFC3339Nano, meta[metaBuiltAt])
	return info
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
