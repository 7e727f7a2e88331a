package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetPutDelete(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	defer kv.Close()

	type rec struct {
		Name string `json:"name"`
	}

	err := kv.Update(ctx, func(tx Tx) error {
		return tx.Put(BucketAccounts, "a1", rec{Name: "Ayaan"})
	})
	require.NoError(t, err)

	var got rec
	require.NoError(t, GetOne(ctx, kv, BucketAccounts, "a1", &got))
	assert.Equal(t, "Ayaan", got.Name)

	err = kv.View(ctx, func(tx Tx) error {
		var missing rec
		return tx.Get(BucketAccounts, "nope", &missing)
	})
	assert.ErrorIs(t, err, ErrNotFound)

	err = kv.Update(ctx, func(tx Tx) error {
		return tx.Delete(BucketAccounts, "a1")
	})
	require.NoError(t, err)
	assert.ErrorIs(t, GetOne(ctx, kv, BucketAccounts, "a1", &got), ErrNotFound)
}

func TestMemoryUpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	defer kv.Close()

	type rec struct {
		N int `json:"n"`
	}

	require.NoError(t, kv.Update(ctx, func(tx Tx) error {
		return tx.Put(BucketWallets, "w1", rec{N: 1})
	}))

	boom := errors.New("boom")
	err := kv.Update(ctx, func(tx Tx) error {
		if err := tx.Put(BucketWallets, "w1", rec{N: 99}); err != nil {
			return err
		}
		if err := tx.Put(BucketWallets, "w2", rec{N: 2}); err != nil {
			return err
		}
		if err := tx.Delete(BucketWallets, "w1"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing from the failed update is visible.
	var got rec
	require.NoError(t, GetOne(ctx, kv, BucketWallets, "w1", &got))
	assert.Equal(t, 1, got.N)
	assert.ErrorIs(t, GetOne(ctx, kv, BucketWallets, "w2", &got), ErrNotFound)
}

func TestMemoryReadYourWrites(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	defer kv.Close()

	type rec struct {
		N int `json:"n"`
	}

	err := kv.Update(ctx, func(tx Tx) error {
		if err := tx.Put(BucketRooms, "r1", rec{N: 7}); err != nil {
			return err
		}
		var got rec
		if err := tx.Get(BucketRooms, "r1", &got); err != nil {
			return err
		}
		assert.Equal(t, 7, got.N)

		if err := tx.Delete(BucketRooms, "r1"); err != nil {
			return err
		}
		return tx.Get(BucketRooms, "r1", &got)
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryList(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	defer kv.Close()

	require.NoError(t, kv.Update(ctx, func(tx Tx) error {
		if err := tx.Put(BucketOrders, "o1", map[string]int{"n": 1}); err != nil {
			return err
		}
		return tx.Put(BucketOrders, "o2", map[string]int{"n": 2})
	}))

	err := kv.View(ctx, func(tx Tx) error {
		all, err := tx.List(BucketOrders)
		if err != nil {
			return err
		}
		assert.Len(t, all, 2)
		assert.Contains(t, all, "o1")
		assert.Contains(t, all, "o2")

		empty, err := tx.List(BucketSessions)
		if err != nil {
			return err
		}
		assert.Empty(t, empty)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryViewRejectsWrites(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	defer kv.Close()

	err := kv.View(ctx, func(tx Tx) error {
		return tx.Put(BucketAccounts, "a1", map[string]string{"name": "x"})
	})
	assert.ErrorIs(t, err, ErrReadOnly)

	err = kv.View(ctx, func(tx Tx) error {
		return tx.Delete(BucketAccounts, "a1")
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestMemoryConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	defer kv.Close()

	type counter struct {
		N int `json:"n"`
	}

	require.NoError(t, kv.Update(ctx, func(tx Tx) error {
		return tx.Put(BucketWallets, "c", counter{})
	}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := kv.Update(ctx, func(tx Tx) error {
				var c counter
				if err := tx.Get(BucketWallets, "c", &c); err != nil {
					return err
				}
				c.N++
				return tx.Put(BucketWallets, "c", c)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var c counter
	require.NoError(t, GetOne(ctx, kv, BucketWallets, "c", &c))
	assert.Equal(t, 50, c.N)
}
