package s3

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Conte777/mediaflow/config"
	"github.com/Conte777/mediaflow/internal/domain"
)

// Client mirrors saved media files into an S3/MinIO bucket
type Client struct {
	client *minio.Client
	bucket string
	prefix string
	fs     afero.Fs
	logger zerolog.Logger
}

// NewClient creates a new S3/MinIO client
func NewClient(cfg *config.S3Config, fs afero.Fs, logger zerolog.Logger) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		fs:     fs,
		logger: logger.With().Str("component", "s3_mirror").Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

// EnsureBucket creates bucket if it doesn't exist. The bucket stays private.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		c.logger.Info().Msg("created S3 bucket")
	}

	return nil
}

// ObjectKey maps a path relative to the download root onto an object key
func (c *Client) ObjectKey(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")
	if c.prefix == "" {
		return rel
	}
	return c.prefix + "/" + rel
}

// MirrorFile uploads localPath under objectKey
func (c *Client) MirrorFile(ctx context.Context, localPath, objectKey string) error {
	f, err := c.fs.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file for mirroring: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file for mirroring: %w", err)
	}

	key := c.ObjectKey(objectKey)
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = c.client.PutObject(ctx, c.bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload media to S3: %w", err)
	}

	c.logger.Debug().
		Str("object_key", key).
		Int64("size", info.Size()).
		Msg("mirrored media to S3")

	return nil
}

// Ensure Client implements domain.Mirror interface
var _ domain.Mirror = (*Client)(nil)
