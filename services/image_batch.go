package services

import (
	"context"
	"time"

	"github.com/vnkhanh/bkhome-server/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cleanupTimeout bounds best-effort deletes that run after the request
// context may already be gone.
const cleanupTimeout = 30 * time.Second

// imageBatch tracks object storage writes made while a relational
// transaction is open. Storage sits outside the transaction, so:
//   - every successful upload is recorded and removed again by compensate
//     when the transaction does not commit;
//   - objects that should disappear with the commit are queued by discard
//     and only removed by finalize once the commit succeeded.
//
// Deletes issued by compensate and finalize are logged, never returned.
type imageBatch struct {
	store     storage.Storage
	log       *zap.Logger
	uploaded  []string
	discarded []string
}

func newImageBatch(store storage.Storage, log *zap.Logger) *imageBatch {
	return &imageBatch{store: store, log: log}
}

// upload stores f under "<entity>/<parent>/<stem>_<millis>" and records the URL.
func (b *imageBatch) upload(ctx context.Context, f storage.File, key string) (string, error) {
	url, err := b.store.Upload(ctx, f, key)
	if err != nil {
		return "", err
	}
	b.log.Info("uploaded", zap.String("url", url))
	b.uploaded = append(b.uploaded, url)
	return url, nil
}

func (b *imageBatch) discard(urls ...string) {
	b.discarded = append(b.discarded, urls...)
}

func (b *imageBatch) compensate(ctx context.Context) {
	b.deleteAll(ctx, b.uploaded, "compensate")
	b.uploaded = nil
	b.discarded = nil
}

func (b *imageBatch) finalize(ctx context.Context) {
	b.deleteAll(ctx, b.discarded, "discard")
	b.uploaded = nil
	b.discarded = nil
}

func (b *imageBatch) deleteAll(ctx context.Context, urls []string, reason string) {
	if len(urls) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	for _, url := range urls {
		if err := b.store.Delete(ctx, url); err != nil {
			b.log.Warn("failed to delete object", zap.String("reason", reason), zap.String("url", url), zap.Error(err))
			continue
		}
		b.log.Info("deleted", zap.String("reason", reason), zap.String("url", url))
	}
}

// workflow couples the relational transaction with an imageBatch.
type workflow struct {
	db    *gorm.DB
	store storage.Storage
	opts  TxOptions
	log   *zap.Logger
}

// run executes fn in a transaction. On failure, panics included, every object
// uploaded through the batch is deleted; on success every discarded object is
// deleted.
func (w *workflow) run(ctx context.Context, fn func(tx *gorm.DB, batch *imageBatch) error) error {
	batch := newImageBatch(w.store, w.log)
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("transaction panicked", zap.Any("panic", r), zap.Int("uploaded", len(batch.uploaded)))
			batch.compensate(ctx)
			panic(r)
		}
	}()

	err := runInTx(ctx, w.db, w.opts, func(tx *gorm.DB) error {
		return fn(tx, batch)
	})
	if err != nil {
		w.log.Error("transaction failed", zap.Error(err), zap.Int("uploaded", len(batch.uploaded)))
		batch.compensate(ctx)
		return err
	}
	batch.finalize(ctx)
	return nil
}
