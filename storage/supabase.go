package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

type Supabase struct {
	client *storage_go.Client
	bucket string
	// publicBase is "<url>/storage/v1/object/public/<bucket>"
	publicBase string
	log        *zap.Logger
}

func NewSupabase(baseURL, apiKey, bucket string, log *zap.Logger) (*Supabase, error) {
	if baseURL == "" || apiKey == "" {
		return nil, errors.New("storage: SUPABASE_URL and SUPABASE_KEY are required")
	}
	log.Info("initializing supabase storage", zap.String("url", baseURL), zap.String("bucket", bucket))
	return &Supabase{
		client:     storage_go.NewClient(baseURL+"/storage/v1", apiKey, nil),
		bucket:     bucket,
		publicBase: fmt.Sprintf("%s/storage/v1/object/public/%s", baseURL, bucket),
		log:        log,
	}, nil
}

func (s *Supabase) Upload(ctx context.Context, f File, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	contentType := f.ContentType
	upsert := true
	opts := storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(f.Data), opts); err != nil {
		s.log.Error("supabase upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	publicURL := s.client.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}

func (s *Supabase) Delete(ctx context.Context, urlOrKey string) error {
	key := s.Key(urlOrKey)
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Supabase) Key(url string) string {
	return keyFromURL(s.publicBase, url)
}
