package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStore(db)
}

func TestSQLiteStore_SetThenGet(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "kv.db"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestSQLiteStore_GetMissingReturnsNilNil(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "kv.db"))

	v, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSQLiteStore_SetOverwrites(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "kv.db"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("old")))
	require.NoError(t, s.Set(ctx, "k", []byte("new")))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestSQLiteStore_DeleteIsIdempotent(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "kv.db"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteStore(db).Set(ctx, "pending", []byte(`[1]`)))
	require.NoError(t, db.Close())

	s := openStore(t, path)
	v, err := s.Get(ctx, "pending")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), v)
}

func TestSQLiteStore_Update(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "kv.db"))
	ctx := context.Background()

	var seen []byte
	err := s.Update(ctx, "k", func(current []byte) ([]byte, error) {
		seen = current
		return []byte("a"), nil
	})
	require.NoError(t, err)
	assert.Nil(t, seen)

	err = s.Update(ctx, "k", func(current []byte) ([]byte, error) {
		return append(current, 'b'), nil
	})
	require.NoError(t, err)

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), v)
}

func TestSQLiteStore_UpdateErrorKeepsValue(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "kv.db"))
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("keep")))

	boom := errors.New("boom")
	err := s.Update(ctx, "k", func([]byte) ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("keep"), v)
}

func TestSQLiteStore_GetWrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM kv").WithArgs("k").WillReturnError(errors.New("disk I/O"))

	_, err = NewSQLiteStore(db).Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get kv[k]")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_SetWrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO kv").WillReturnError(errors.New("readonly"))

	err = NewSQLiteStore(db).Set(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set kv[k]")
	assert.NoError(t, mock.ExpectationsWereMet())
}
