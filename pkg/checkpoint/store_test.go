// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store Store) {
	ctx := context.Background()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, "a"), ErrNotFound)

	require.NoError(t, store.Put(ctx, "b", []byte(`{"v":1}`)))
	require.NoError(t, store.Put(ctx, "a", []byte(`{"v":2}`)))
	require.NoError(t, store.Put(ctx, "b", []byte(`{"v":3}`)))

	data, err := store.Get(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"v":3}`), data)

	ids, err = store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, store.Delete(ctx, "a"))
	ids, err = store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ids)

	for _, id := range []string{"", "../x", "a/b", "a b"} {
		require.ErrorIs(t, store.Put(ctx, id, nil), ErrInvalidID, id)
	}
}

func testLock(t *testing.T, store Store) {
	ctx := context.Background()

	unlock, err := store.TryLock(ctx, "a")
	require.NoError(t, err)
	_, err = store.TryLock(ctx, "a")
	require.ErrorIs(t, err, ErrLocked)

	// other records are not affected
	unlockB, err := store.TryLock(ctx, "b")
	require.NoError(t, err)
	unlockB()

	unlock()
	unlock, err = store.TryLock(ctx, "a")
	require.NoError(t, err)
	unlock()

	_, err = store.TryLock(ctx, "../a")
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestFileStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewFileStore(fs, "/base/sagas")
	require.NoError(t, err)
	testStore(t, store)

	// no temporary files are left behind
	entries, err := afero.ReadDir(fs, "/base/sagas")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "b.json", entries[0].Name())

	testLock(t, store)
}

func TestFileStoreLockAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	first, err := NewFileStore(afero.NewOsFs(), dir)
	require.NoError(t, err)
	second, err := NewFileStore(afero.NewOsFs(), dir)
	require.NoError(t, err)
	testLock(t, first)

	unlock, err := first.TryLock(ctx, "a")
	require.NoError(t, err)
	_, err = second.TryLock(ctx, "a")
	require.ErrorIs(t, err, ErrLocked)
	unlock()

	unlock, err = second.TryLock(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, second.Put(ctx, "a", []byte(`{}`)))
	require.NoError(t, second.Delete(ctx, "a"))
	unlock()

	// the lock file goes with the record
	require.NoFileExists(t, filepath.Join(dir, "a.json"))
	require.NoFileExists(t, filepath.Join(dir, "a.lock"))
	ids, err := first.List(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestBoltStore(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sagas.db")
	store, err := NewBoltStore(file)
	require.NoError(t, err)
	testStore(t, store)
	testLock(t, store)
	require.NoError(t, store.Close())

	// records survive reopening
	store, err = NewBoltStore(file)
	require.NoError(t, err)
	defer store.Close()
	data, err := store.Get(context.Background(), "b")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"v":3}`), data)
}

func TestOpen(t *testing.T) {
	store, err := Open(Config{BaseDir: "/base"}, afero.NewMemMapFs())
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)

	store, err = Open(Config{Backend: BackendBolt, BaseDir: t.TempDir()}, nil)
	require.NoError(t, err)
	require.IsType(t, &BoltStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(Config{Backend: BackendPostgres}, nil)
	require.ErrorContains(t, err, "dsn is required")

	_, err = Open(Config{Backend: "mongo"}, nil)
	require.ErrorContains(t, err, "unsupported checkpoint backend")
}

func TestRecordTableName(t *testing.T) {
	require.Equal(t, "saga_checkpoints", Record{}.TableName())
}

// runs against a live database when L1ORCH_TEST_POSTGRES_DSN is set
func TestGormStoreLockAcrossConnections(t *testing.T) {
	dsn := os.Getenv("L1ORCH_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("L1ORCH_TEST_POSTGRES_DSN is not set")
	}
	ctx := context.Background()
	first, err := OpenPostgresStore(dsn)
	require.NoError(t, err)
	defer first.Close()
	second, err := OpenPostgresStore(dsn)
	require.NoError(t, err)
	defer second.Close()

	unlock, err := first.TryLock(ctx, "lock-test")
	require.NoError(t, err)
	_, err = second.TryLock(ctx, "lock-test")
	require.ErrorIs(t, err, ErrLocked)
	unlock()

	unlock, err = second.TryLock(ctx, "lock-test")
	require.NoError(t, err)
	unlock()
}
