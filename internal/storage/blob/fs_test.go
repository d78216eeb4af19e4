package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFSStore_SaveAndOpen(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "key-1", []byte("diploma")))

	data, err := store.Open(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, []byte("diploma"), data)
}

func TestFSStore_OpenMissing(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "no-such-key")
	require.Error(t, err)
}
