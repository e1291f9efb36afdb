package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides "<endpoint>/<bucket>" as the prefix of returned URLs.
	PublicURL string
}

// S3 talks to any S3-compatible service (AWS S3, MinIO).
type S3 struct {
	client     *minio.Client
	bucket     string
	publicBase string
	log        *zap.Logger
}

func NewS3(opts S3Options, log *zap.Logger) (*S3, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, errors.New("storage: S3_ENDPOINT and S3_BUCKET are required")
	}
	log.Info("initializing s3 storage", zap.String("endpoint", opts.Endpoint), zap.String("bucket", opts.Bucket), zap.Bool("use_ssl", opts.UseSSL))

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client for %s: %w", opts.Endpoint, err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", opts.Bucket, err)
		}
		log.Info("s3 bucket created", zap.String("bucket", opts.Bucket))
	}

	publicBase := opts.PublicURL
	if publicBase == "" {
		publicBase = fmt.Sprintf("%s/%s", client.EndpointURL().String(), opts.Bucket)
	}
	return &S3{client: client, bucket: opts.Bucket, publicBase: publicBase, log: log}, nil
}

func (s *S3) Upload(ctx context.Context, f File, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(f.Data), int64(len(f.Data)), minio.PutObjectOptions{
		ContentType: f.ContentType,
	})
	if err != nil {
		s.log.Error("s3 put object failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	s.log.Debug("s3 object stored", zap.String("key", info.Key), zap.String("etag", info.ETag), zap.Int64("size", info.Size))
	return s.publicBase + "/" + key, nil
}

func (s *S3) Delete(ctx context.Context, urlOrKey string) error {
	key := s.Key(urlOrKey)
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) Key(url string) string {
	return keyFromURL(s.publicBase, url)
}
