package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"Spitbox/config"
	"Spitbox/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Backend stores uploads in an AWS S3 bucket.
type S3Backend struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	publicURL  string
	tempDir    string
}

// NewS3Backend builds an S3 client. Static keys are used when configured,
// otherwise the default AWS credential chain applies.
func NewS3Backend(ctx context.Context, cfg *config.Config) (*S3Backend, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}

	b := &S3Backend{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     cfg.S3Bucket,
		publicURL:  strings.TrimRight(publicURL, "/"),
		tempDir:    cfg.TempDir(),
	}
	if err := os.MkdirAll(b.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	logger.Info("Using S3 storage", logger.String("bucket", b.bucket), logger.String("region", cfg.S3Region))
	return b, nil
}

func (b *S3Backend) Name() string { return "s3" }

// Store spools r to disk so the upload manager can retry parts, then uploads
// it with a public-read ACL.
func (b *S3Backend) Store(ctx context.Context, r io.Reader, name string) (string, error) {
	key := SanitizeFilename(name)
	if key == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	tmpPath, err := spool(b.tempDir, r)
	if err != nil {
		return "", err
	}
	defer removeTemp(tmpPath)

	f, err := os.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to reopen temp file: %w", err)
	}
	defer f.Close()

	_, err = b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentTypeFor(key)),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3://%s: %w", key, b.bucket, err)
	}
	return b.publicURL + "/" + key, nil
}

// Open downloads the whole object into memory.
func (b *S3Backend) Open(ctx context.Context, name string) (*Object, error) {
	head, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat s3://%s/%s: %w", b.bucket, name, err)
	}

	buf := manager.NewWriteAtBuffer(make([]byte, 0, aws.ToInt64(head.ContentLength)))
	if _, err := b.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(name),
	}); err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", b.bucket, name, err)
	}

	obj := &Object{
		Content: nopSeekCloser{bytes.NewReader(buf.Bytes())},
		Size:    int64(len(buf.Bytes())),
	}
	if head.LastModified != nil {
		obj.ModTime = *head.LastModified
	}
	return obj, nil
}

func (b *S3Backend) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s: %w", b.bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			info := ObjectInfo{
				Key:         key,
				Size:        aws.ToInt64(obj.Size),
				ContentType: ContentTypeFor(key),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			out = append(out, info)
		}
	}
	return out, nil
}
