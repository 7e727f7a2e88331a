// Package store is the persistent key-value layer every service writes
// through. Records live in named buckets keyed by string and are stored as
// JSON. All read-modify-write sequences must run inside Update, which
// serializes access to the touched keys so higher-level invariants (balance
// conservation, one escrow per room) hold under concurrency.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Bucket names. Each collection from the data model owns exactly one.
const (
	BucketAccounts      = "accounts"
	BucketAccountEmails = "account_emails"
	BucketSessions      = "sessions"
	BucketWallets       = "wallets"
	BucketRooms         = "rooms"
	BucketOrders        = "orders"
)

var (
	ErrNotFound = errors.New("store: key not found")
	// ErrReadOnly is returned for a Put or Delete issued inside View.
	ErrReadOnly = errors.New("store: write attempted in a read-only transaction")
)

// Tx is the handle passed to View/Update functions. Inside Update, Get
// acquires the key for the duration of the transaction.
type Tx interface {
	// Get unmarshals the record at (bucket, key) into out. ErrNotFound
	// when the key is absent.
	Get(bucket, key string, out any) error
	Put(bucket, key string, v any) error
	Delete(bucket, key string) error
	// List returns every record in the bucket keyed by record key.
	List(bucket string) (map[string]json.RawMessage, error)
}

type KV interface {
	// View runs fn with read-only access.
	View(ctx context.Context, fn func(Tx) error) error
	// Update runs fn atomically: either every Put/Delete it performs is
	// applied, or none are.
	Update(ctx context.Context, fn func(Tx) error) error
	Close()
}

// GetOne is a convenience single-key read.
func GetOne(ctx context.Context, kv KV, bucket, key string, out any) error {
	return kv.View(ctx, func(tx Tx) error {
		return tx.Get(bucket, key, out)
	})
}
