package memdisk_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/Digital-Defiance/brightchain-off/pkg/blocks"
	"github.com/Digital-Defiance/brightchain-off/pkg/offerrors"
	"github.com/Digital-Defiance/brightchain-off/pkg/store"
	"github.com/Digital-Defiance/brightchain-off/pkg/store/backends/memdisk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawBlock(t *testing.T, fill byte) *blocks.Block {
	t.Helper()
	b, err := blocks.NewRaw(blocks.Small, bytes.Repeat([]byte{fill}, blocks.Small.Bytes()), false)
	require.NoError(t, err)
	return b
}

func TestPutGetRoundTrip(t *testing.T) {
	s := memdisk.New()
	ctx := context.Background()
	b := rawBlock(t, 0x42)

	require.NoError(t, s.Put(ctx, b, store.PutOptions{Durability: store.Durable}))

	got, err := s.Get(ctx, b.ID())
	require.NoError(t, err)
	gotData, err := got.Data()
	require.NoError(t, err)
	wantData, _ := b.Data()
	assert.Equal(t, wantData, gotData)
}

func TestPutRejectsDuplicate(t *testing.T) {
	s := memdisk.New()
	ctx := context.Background()
	b := rawBlock(t, 0x01)

	require.NoError(t, s.Put(ctx, b, store.PutOptions{}))
	err := s.Put(ctx, b, store.PutOptions{})
	require.Error(t, err)
	assert.Equal(t, offerrors.BlockAlreadyExists, offerrors.KindOf(err))
}

func TestGetMissingReturnsKeyNotFound(t *testing.T) {
	s := memdisk.New()
	b := rawBlock(t, 0x01)

	_, err := s.Get(context.Background(), b.ID())
	require.Error(t, err)
	assert.Equal(t, offerrors.KeyNotFound, offerrors.KindOf(err))
}

func TestHasAndDelete(t *testing.T) {
	s := memdisk.New()
	ctx := context.Background()
	b := rawBlock(t, 0x07)
	require.NoError(t, s.Put(ctx, b, store.PutOptions{}))

	has, err := s.Has(ctx, b.ID())
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, s.Delete(ctx, b.ID()))

	has, err = s.Has(ctx, b.ID())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestListBySize(t *testing.T) {
	s := memdisk.New()
	ctx := context.Background()
	a := rawBlock(t, 0x01)
	b := rawBlock(t, 0x02)
	require.NoError(t, s.Put(ctx, a, store.PutOptions{}))
	require.NoError(t, s.Put(ctx, b, store.PutOptions{}))

	ids, err := s.ListBySize(ctx, blocks.Small)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestListByPool(t *testing.T) {
	s := memdisk.New()
	ctx := context.Background()
	a, err := blocks.NewRaw(blocks.Small, bytes.Repeat([]byte{0x09}, blocks.Small.Bytes()), false, blocks.WithPool("grp"))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, a, store.PutOptions{}))

	ids, err := s.ListByPool(ctx, "grp")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.True(t, ids[0].Equal(a.ID()))
}

func TestHealthCheck(t *testing.T) {
	s := memdisk.New()
	status := s.HealthCheck(context.Background())
	assert.True(t, status.Healthy)
}
