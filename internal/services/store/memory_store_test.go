package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	_, err := ms.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, ms.Set(ctx, "k", []byte("valeur")))
	got, err := ms.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("valeur"), got)
	assert.Equal(t, 1, ms.Len())

	require.NoError(t, ms.Remove(ctx, "k"))
	_, err = ms.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	// removing an absent key is not an error
	assert.NoError(t, ms.Remove(ctx, "k"))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	original := []byte("abc")
	require.NoError(t, ms.Set(ctx, "k", original))

	// mutating the caller's slice must not reach the stored copy
	original[0] = 'z'
	got, err := ms.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	// and mutating a returned slice must not corrupt the store
	got[1] = 'z'
	again, err := ms.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryStorePingAndClose(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, ms.Ping(ctx))

	require.NoError(t, ms.Set(ctx, "k", []byte("v")))
	require.NoError(t, ms.Close())
	_, err := ms.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss, "close drops the data")
}
