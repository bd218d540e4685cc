package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/genai-tracker/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestKVStore_PutGetDelete(t *testing.T) {
	store := NewKVStore(NewTestDB(t))
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.Put(ctx, "k", []byte("one")))
	require.NoError(t, store.Put(ctx, "k", []byte("two")))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "two", string(got))

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
