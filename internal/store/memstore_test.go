package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	cerrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(name string) Product {
	return Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString("9.99"),
		Available: true,
		Category:  CategoryTools,
	}
}

func TestMemStore_PutGet(t *testing.T) {
	// given
	memStore := NewMemStore()
	ctx := context.Background()
	product := newProduct("Fedora")
	// when
	require.NoError(t, memStore.Put(ctx, product))
	found, err := memStore.Get(ctx, product.ID)
	// then
	require.NoError(t, err)
	assert.Equal(t, product, *found)
}

func TestMemStore_GetNotFound(t *testing.T) {
	memStore := NewMemStore()

	found, err := memStore.Get(context.Background(), uuid.New())

	assert.ErrorIs(t, err, cerrors.ErrProductNotFound)
	assert.Nil(t, found)
}

func TestMemStore_PutOverwrites(t *testing.T) {
	// given
	memStore := NewMemStore()
	ctx := context.Background()
	product := newProduct("Fedora")
	require.NoError(t, memStore.Put(ctx, product))
	// when
	product.Name = "Bowler"
	product.Available = false
	require.NoError(t, memStore.Put(ctx, product))
	// then
	found, err := memStore.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bowler", found.Name)
	assert.False(t, found.Available)

	all, err := memStore.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemStore_Delete(t *testing.T) {
	// given
	memStore := NewMemStore()
	ctx := context.Background()
	product := newProduct("Fedora")
	require.NoError(t, memStore.Put(ctx, product))
	// when
	require.NoError(t, memStore.Delete(ctx, product.ID))
	// then
	_, err := memStore.Get(ctx, product.ID)
	assert.ErrorIs(t, err, cerrors.ErrProductNotFound)
	// the second delete of the same ID must report not found
	err = memStore.Delete(ctx, product.ID)
	assert.ErrorIs(t, err, cerrors.ErrProductNotFound)
}

func TestMemStore_DeleteNotFound(t *testing.T) {
	memStore := NewMemStore()

	err := memStore.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, cerrors.ErrProductNotFound)
}

func TestMemStore_AllInsertionOrder(t *testing.T) {
	// given
	memStore := NewMemStore()
	ctx := context.Background()
	names := []string{"Fedora", "Toaster", "Gardening Book", "Hammer", "Sofa"}
	for _, name := range names {
		require.NoError(t, memStore.Put(ctx, newProduct(name)))
	}
	// when
	all, err := memStore.All(ctx)
	// then
	require.NoError(t, err)
	require.Len(t, all, len(names))
	for i, p := range all {
		assert.Equal(t, names[i], p.Name)
	}
}

func TestMemStore_OverwriteKeepsPosition(t *testing.T) {
	// given
	memStore := NewMemStore()
	ctx := context.Background()
	first := newProduct("Fedora")
	second := newProduct("Toaster")
	third := newProduct("Hammer")
	require.NoError(t, memStore.Put(ctx, first))
	require.NoError(t, memStore.Put(ctx, second))
	require.NoError(t, memStore.Put(ctx, third))
	// when: overwriting the first record must not move it to the back
	first.Name = "Bowler"
	require.NoError(t, memStore.Put(ctx, first))
	// then
	all, err := memStore.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Bowler", all[0].Name)
	assert.Equal(t, "Toaster", all[1].Name)
	assert.Equal(t, "Hammer", all[2].Name)
}

func TestMemStore_AllEmpty(t *testing.T) {
	memStore := NewMemStore()

	all, err := memStore.All(context.Background())

	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemStore_ConcurrentPutDistinctKeys(t *testing.T) {
	// given
	memStore := NewMemStore()
	ctx := context.Background()
	const goroutines = 32
	const perGoroutine = 25

	ids := make([][]uuid.UUID, goroutines)
	var wg sync.WaitGroup
	for g := range goroutines {
		ids[g] = make([]uuid.UUID, perGoroutine)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perGoroutine {
				p := newProduct(fmt.Sprintf("product-%d-%d", g, i))
				ids[g][i] = p.ID
				_ = memStore.Put(ctx, p)
			}
		}()
	}
	wg.Wait()
	// then: every record is retrievable and the snapshot holds them all
	for g := range goroutines {
		for i := range perGoroutine {
			found, err := memStore.Get(ctx, ids[g][i])
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("product-%d-%d", g, i), found.Name)
		}
	}
	all, err := memStore.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, goroutines*perGoroutine)
}

func TestMemStore_ConcurrentOverwriteSameKey(t *testing.T) {
	// given
	memStore := NewMemStore()
	ctx := context.Background()
	product := newProduct("Fedora")
	require.NoError(t, memStore.Put(ctx, product))

	const writers = 16
	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := product
			p.Name = fmt.Sprintf("writer-%d", w)
			_ = memStore.Put(ctx, p)
		}()
	}
	wg.Wait()
	// then: exactly one record survives, holding one writer's full update
	all, err := memStore.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, product.ID, all[0].ID)
	assert.Contains(t, all[0].Name, "writer-")
}
