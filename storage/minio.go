package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"Spitbox/config"
	"Spitbox/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// MinioBackend stores uploads in a MinIO (or any S3 compatible) bucket.
type MinioBackend struct {
	client    *minio.Client
	bucket    string
	publicURL string
	tempDir   string
}

// NewMinioBackend connects to MinIO and makes sure the bucket exists and is
// publicly readable.
func NewMinioBackend(ctx context.Context, cfg *config.Config) (*MinioBackend, error) {
	logger.Info("Connecting to MinIO",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket),
		logger.String("region", cfg.MinioRegion))

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	publicURL := cfg.MinioPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.MinioEndpoint
	}

	b := &MinioBackend{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		tempDir:   cfg.TempDir(),
	}
	if err := os.MkdirAll(b.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := b.ensureBucket(ctx, cfg.MinioRegion); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *MinioBackend) ensureBucket(ctx context.Context, region string) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info("Created bucket", logger.String("bucket", b.bucket))
	}
	if err := b.client.SetBucketPolicy(ctx, b.bucket, fmt.Sprintf(publicReadPolicy, b.bucket)); err != nil {
		return fmt.Errorf("failed to set public read policy on %s: %w", b.bucket, err)
	}
	return nil
}

func (b *MinioBackend) Name() string { return "minio" }

// Store spools r to a temp file and uploads it. The temp file is removed once
// the upload returns, whether it succeeded or not.
func (b *MinioBackend) Store(ctx context.Context, r io.Reader, name string) (string, error) {
	key := SanitizeFilename(name)
	if key == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	tmpPath, err := spool(b.tempDir, r)
	if err != nil {
		return "", err
	}
	defer removeTemp(tmpPath)

	_, err = b.client.FPutObject(ctx, b.bucket, key, tmpPath, minio.PutObjectOptions{
		ContentType: ContentTypeFor(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", key, b.bucket, err)
	}
	return fmt.Sprintf("%s/%s/%s", b.publicURL, b.bucket, key), nil
}

func (b *MinioBackend) Open(ctx context.Context, name string) (*Object, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", name, err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return &Object{Content: obj, Size: info.Size, ModTime: info.LastModified}, nil
}

// List 列出存储桶中的对象
func (b *MinioBackend) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for object := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		out = append(out, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  ContentTypeFor(object.Key),
		})
	}
	return out, nil
}

// spool copies r into a uniquely named file inside dir and returns its path.
func spool(dir string, r io.Reader) (string, error) {
	tmpPath := filepath.Join(dir, uuid.NewString())
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		removeTemp(tmpPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		removeTemp(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return tmpPath, nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove temp upload", logger.String("path", path), logger.ErrorField(err))
	}
}
