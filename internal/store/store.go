package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"time"

	"github.com/uptrace/bun"

	"ms-reservations/internal/errs"
)

// DB is the document-store collaborator for the reservation and attendance
// services. It is the only component allowed to touch remaining_availability
// and checked_in_count, and every mutation of those counters is a guarded
// UPDATE so concurrent requests on the same record are linearized by the
// store rather than by application locks.
type DB struct {
	Bun bun.IDB
}

func New(db *bun.DB) *DB {
	return &DB{Bun: db}
}

// RunInTx executes fn against a transactional view of the store. Calling it
// on a DB that is already transactional just runs fn in place.
func (d *DB) RunInTx(ctx context.Context, fn func(tx *DB) error) error {
	root, ok := d.Bun.(*bun.DB)
	if !ok {
		return fn(d)
	}
	return root.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(&DB{Bun: tx})
	})
}

const (
	maxAttempts  = 3
	retryBackoff = 100 * time.Millisecond
)

// withRetry re-runs fn on transient store failures with a short doubling
// backoff. Business-rule errors pass through untouched on the first attempt.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	backoff := retryBackoff
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		err = fn()
		if err == nil || !errs.IsTransient(err) {
			return err
		}
	}
	return err
}

// wrapErr classifies low-level failures so services can decide what to retry.
// sql.ErrNoRows is left alone: callers turn it into their own NotFound.
func wrapErr(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.As(err, &netErr) {
		return errs.Transient(err)
	}
	return err
}
