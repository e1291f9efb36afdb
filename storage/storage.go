// Package storage uploads and removes binary objects in a public bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vnkhanh/bkhome-server/config"
	"go.uber.org/zap"
)

var ErrEmptyKey = errors.New("storage: empty object key")

// File is one uploaded blob.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Storage is the object storage client consumed by the workflows.
type Storage interface {
	// Upload stores f under key and returns its public URL.
	Upload(ctx context.Context, f File, key string) (string, error)
	// Delete removes the object addressed by a public URL or a bare key.
	Delete(ctx context.Context, urlOrKey string) error
	// Key extracts the object key from a public URL.
	Key(url string) string
}

// New builds the backend selected by cfg.Driver.
func New(cfg config.StorageConfig, log *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case "supabase":
		return NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket, log)
	case "s3":
		return NewS3(S3Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
			PublicURL: cfg.S3PublicURL,
		}, log)
	}
	return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
}

// keyFromURL strips base (".../bucket") from u. Anything that does not start
// with base is treated as a key already.
func keyFromURL(base, u string) string {
	base = strings.TrimRight(base, "/") + "/"
	if strings.HasPrefix(u, base) {
		u = strings.TrimPrefix(u, base)
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimLeft(u, "/")
}
