package persist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := OpenSQLite(ctx, fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func newTestBunStore(t *testing.T) *BunStore {
	t.Helper()

	store := NewBunStore(newTestDB(t))
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"bun":    func(t *testing.T) Store { return newTestBunStore(t) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()

			_, err := store.Get(ctx, ContentKey)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, ContentKey, "<p>one</p>"))
			value, err := store.Get(ctx, ContentKey)
			require.NoError(t, err)
			assert.Equal(t, "<p>one</p>", value)

			require.NoError(t, store.Set(ctx, ContentKey, "<p>two</p>"))
			value, err = store.Get(ctx, ContentKey)
			require.NoError(t, err)
			assert.Equal(t, "<p>two</p>", value)

			_, err = store.Get(ctx, "other")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBunStoreInitIsIdempotent(t *testing.T) {
	store := newTestBunStore(t)
	require.NoError(t, store.Init(context.Background()))
}

func TestBunStoreRequiresDatabase(t *testing.T) {
	store := NewBunStore(nil)
	ctx := context.Background()

	require.Error(t, store.Init(ctx))
	_, err := store.Get(ctx, ContentKey)
	require.Error(t, err)
	require.Error(t, store.Set(ctx, ContentKey, "x"))
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for idx := 0; idx < 8; idx++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", idx)
			_ = store.Set(ctx, key, key)
			_, _ = store.Get(ctx, key)
		}(idx)
	}
	wg.Wait()

	value, err := store.Get(ctx, "k3")
	require.NoError(t, err)
	assert.Equal(t, "k3", value)
}
