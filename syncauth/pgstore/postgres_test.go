package pgstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncup/syncup-go/syncauth"
)

var _ syncauth.Store = (*Store)(nil)

func setupPostgresTest(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, "alice"), mock
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	store, mock := setupPostgresTest(t)

	t.Run("GetExistingKey", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(getQuery)).
			WithArgs("alice", syncauth.KeyAuthToken).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("abc123"))

		v, ok, err := store.Get(ctx, syncauth.KeyAuthToken)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc123", v)
	})

	t.Run("GetMissingKey", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(getQuery)).
			WithArgs("alice", syncauth.KeyUserData).
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		v, ok, err := store.Get(ctx, syncauth.KeyUserData)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("GetDatabaseError", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(getQuery)).
			WithArgs("alice", syncauth.KeyAuthToken).
			WillReturnError(errors.New("connection reset"))

		_, ok, err := store.Get(ctx, syncauth.KeyAuthToken)
		assert.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("SetUpserts", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(upsertQuery)).
			WithArgs("alice", syncauth.KeyAuthToken, "abc123").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, store.Set(ctx, syncauth.KeyAuthToken, "abc123"))
	})

	t.Run("Remove", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(deleteQuery)).
			WithArgs("alice", syncauth.KeyAuthToken).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, store.Remove(ctx, syncauth.KeyAuthToken))
	})

	t.Run("ClearScopedToNamespace", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(clearQuery)).
			WithArgs("alice").
			WillReturnResult(sqlmock.NewResult(0, 3))

		assert.NoError(t, store.Clear(ctx))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSessionEnd(t *testing.T) {
	ctx := context.Background()
	store, mock := setupPostgresTest(t)

	cfg, err := syncauth.NewConfig(syncauth.WithStore(store))
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(deleteQuery)).
		WithArgs("alice", syncauth.KeyAuthToken).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectExec(regexp.QuoteMeta(deleteQuery)).
		WithArgs("alice", syncauth.KeyUserData).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = syncauth.NewSession(cfg).End(ctx)
	assert.Error(t, err)
	assert.Equal(t, syncauth.ErrStoreFailure, syncauth.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "user_data removal must still run")
}

func TestNewDefaultsNamespace(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "default", New(db, "").namespace)
}
