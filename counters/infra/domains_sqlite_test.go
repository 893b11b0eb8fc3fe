package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counter-gateway/counters/domain"
)

func setupDomainStore(t *testing.T) *SQLiteDomainStore {
	t.Helper()

	store, err := NewSQLiteDomainStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestSQLiteDomainStore_CreateAndFind(t *testing.T) {
	store := setupDomainStore(t)
	ctx := context.Background()

	d := domain.Domain{
		Name:        "example.com",
		OwnerID:     "u1",
		VerifyToken: "tok-1",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Create(ctx, d))

	got, err := store.FindByNameAndOwner(ctx, "example.com", "u1")
	require.NoError(t, err)
	assert.Equal(t, "example.com", got.Name)
	assert.Equal(t, "u1", got.OwnerID)
	assert.Equal(t, "tok-1", got.VerifyToken)
	assert.False(t, got.Verified)
	assert.Equal(t, d.CreatedAt, got.CreatedAt)
}

func TestSQLiteDomainStore_DuplicateName(t *testing.T) {
	store := setupDomainStore(t)
	ctx := context.Background()

	d := domain.Domain{Name: "example.com", OwnerID: "u1", VerifyToken: "t", CreatedAt: time.Now()}
	require.NoError(t, store.Create(ctx, d))

	d.OwnerID = "u2"
	err := store.Create(ctx, d)
	assert.ErrorIs(t, err, domain.ErrDomainTaken)
}

func TestSQLiteDomainStore_OwnershipIsHidden(t *testing.T) {
	store := setupDomainStore(t)
	ctx := context.Background()

	d := domain.Domain{Name: "example.com", OwnerID: "u1", VerifyToken: "t", CreatedAt: time.Now()}
	require.NoError(t, store.Create(ctx, d))

	_, errOther := store.FindByNameAndOwner(ctx, "example.com", "u2")
	_, errMissing := store.FindByNameAndOwner(ctx, "missing.com", "u2")

	require.True(t, errors.Is(errOther, domain.ErrDomainNotFound))
	require.True(t, errors.Is(errMissing, domain.ErrDomainNotFound))
	// dono errado e inexistente são o mesmo erro
	assert.Equal(t, errMissing.Error(), errOther.Error())
}

func TestSQLiteDomainStore_MarkVerified(t *testing.T) {
	store := setupDomainStore(t)
	ctx := context.Background()

	d := domain.Domain{Name: "example.com", OwnerID: "u1", VerifyToken: "t", CreatedAt: time.Now()}
	require.NoError(t, store.Create(ctx, d))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.MarkVerified(ctx, "example.com", at))

	got, err := store.FindByName(ctx, "example.com")
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Equal(t, at, got.VerifiedAt)

	err = store.MarkVerified(ctx, "missing.com", at)
	assert.ErrorIs(t, err, domain.ErrDomainNotFound)
}

func TestSQLiteDomainStore_ListByOwner(t *testing.T) {
	store := setupDomainStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, name := range []string{"a.com", "b.com"} {
		d := domain.Domain{Name: name, OwnerID: "u1", VerifyToken: "t", CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, store.Create(ctx, d))
	}
	require.NoError(t, store.Create(ctx, domain.Domain{Name: "c.com", OwnerID: "u2", VerifyToken: "t", CreatedAt: base}))

	ds, err := store.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "a.com", ds[0].Name)
	assert.Equal(t, "b.com", ds[1].Name)
}

func TestSQLiteDomainStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewSQLiteDomainStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, domain.Domain{Name: "example.com", OwnerID: "u1", VerifyToken: "t", CreatedAt: time.Now()}))
	require.NoError(t, store.Close())

	// reabrir roda as migrações de novo sem destruir nada
	reopened, err := NewSQLiteDomainStore(dir)
	require.NoError(t, err)
	defer func() { assert.NoError(t, reopened.Close()) }()

	got, err := reopened.FindByName(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerID)
}
