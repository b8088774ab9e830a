package repository

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgfkit/internal/domain/collection"
	errs "sgfkit/internal/errors"
)

func TestMapStorageSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMapCollectionStorage(10)

	record := collection.StoredCollection{ID: "a", Name: "first", Sgf: "(;B[aa])"}
	require.NoError(t, store.Save(ctx, record))

	got, err := store.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, record, got)

	text, err := store.LoadSGF(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "(;B[aa])", text)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.GetByID(ctx, "a")
	assert.ErrorIs(t, err, errs.ErrCollectionNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "a"), errs.ErrCollectionNotFound)
}

func TestMapStorageListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMapCollectionStorage(2)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, collection.StoredCollection{
			ID:        fmt.Sprintf("c%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Sgf:       "(;)",
		}))
	}

	page, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Collections, 2)
	assert.Equal(t, "c4", page.Collections[0].ID)
	assert.Equal(t, "c3", page.Collections[1].ID)
	assert.Empty(t, page.Collections[0].Sgf)

	page, err = store.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, page.Collections, 1)
	assert.Equal(t, "c0", page.Collections[0].ID)

	page, err = store.List(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, page.Collections)

	page, err = store.List(ctx, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, page.Collections)
	assert.Equal(t, 3, page.TotalPages)
}
