package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrTxWait = errors.New("timed out waiting for a database transaction")

type TxOptions struct {
	// MaxWait bounds acquiring the connection and starting the transaction.
	MaxWait time.Duration
	// Timeout bounds the whole transaction, fn included.
	Timeout time.Duration
}

var DefaultTxOptions = TxOptions{MaxWait: 10 * time.Second, Timeout: 60 * time.Second}

// runInTx runs fn inside a transaction. It rolls back when fn returns an
// error or panics and commits otherwise. Once Timeout elapses the context is
// cancelled, so any further statement fails and the transaction is rolled back.
func runInTx(ctx context.Context, db *gorm.DB, opts TxOptions, fn func(tx *gorm.DB) error) (err error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTxOptions.Timeout
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultTxOptions.MaxWait
	}

	txCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	tx, err := begin(txCtx, cancel, db, opts.MaxWait)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, context.Canceled) && !errors.Is(rbErr, context.DeadlineExceeded) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := txCtx.Err(); err != nil {
		tx.Rollback()
		return fmt.Errorf("transaction exceeded %s: %w", opts.Timeout, err)
	}
	return tx.Commit().Error
}

// begin starts the transaction but gives up after maxWait. When it gives up,
// cancel() makes database/sql roll back a transaction that started late.
func begin(ctx context.Context, cancel context.CancelFunc, db *gorm.DB, maxWait time.Duration) (*gorm.DB, error) {
	type result struct {
		tx  *gorm.DB
		err error
	}
	done := make(chan result, 1)
	go func() {
		tx := db.WithContext(ctx).Begin()
		done <- result{tx: tx, err: tx.Error}
	}()

	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("begin transaction: %w", r.err)
		}
		return r.tx, nil
	case <-timer.C:
		cancel()
		return nil, fmt.Errorf("%w after %s", ErrTxWait, maxWait)
	case <-ctx.Done():
		return nil, fmt.Errorf("begin transaction: %w", ctx.Err())
	}
}
