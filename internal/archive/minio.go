package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

// ObjectStorage writes data streams to object storage.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
}

// MinIOConfig holds object storage connection settings.
type MinIOConfig struct {
	Endpoint  string // e.g. "localhost:9000"
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinIOStorage implements ObjectStorage using MinIO.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage creates a storage client and ensures the bucket exists.
func NewMinIOStorage(ctx context.Context, cfg MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinIOStorage{client: client, bucket: cfg.Bucket}, nil
}

// Put stores an object.
func (m *MinIOStorage) Put(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload to minio: %w", err)
	}
	return nil
}

// FrameArchiver snapshots fetched frames as JSON objects.
type FrameArchiver struct {
	storage ObjectStorage
}

// NewFrameArchiver creates an archiver backed by the given storage.
func NewFrameArchiver(storage ObjectStorage) *FrameArchiver {
	return &FrameArchiver{storage: storage}
}

// ArchiveFrame writes one frame under its run/hour key.
func (a *FrameArchiver) ArchiveFrame(ctx context.Context, lake glofs.Lake, hour int, f *glofs.Frame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	key := ObjectKey{
		Lake: lake,
		Run:  f.Meta.Run,
		Hour: hour,
		ID:   uuid.NewString(),
	}
	return a.storage.Put(ctx, key.Key(), bytes.NewReader(payload), int64(len(payload)), "application/json")
}
