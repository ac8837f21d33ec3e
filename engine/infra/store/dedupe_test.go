package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intakehq/intake/engine/infra/store"
)

func TestRecentOpsRepo(t *testing.T) {
	t.Run("Should report an existing key inside the window", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewRecentOpsRepo(mockPool)
		rows := mockPool.NewRows([]string{"?column?"}).AddRow(true)
		mockPool.ExpectQuery("SELECT count\\(\\*\\) > 0 FROM recent_operations").
			WithArgs("abc123", float64(600)).
			WillReturnRows(rows)

		exists, err := repo.Exists(context.Background(), "abc123", 10*time.Minute)

		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should report a missing key as absent", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewRecentOpsRepo(mockPool)
		rows := mockPool.NewRows([]string{"?column?"}).AddRow(false)
		mockPool.ExpectQuery("SELECT count\\(\\*\\) > 0 FROM recent_operations").
			WillReturnRows(rows)

		exists, err := repo.Exists(context.Background(), "missing", 10*time.Minute)

		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Should insert a new key", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewRecentOpsRepo(mockPool)
		mockPool.ExpectExec("INSERT INTO recent_operations (.+) ON CONFLICT \\(hash\\) DO NOTHING").
			WithArgs("abc123").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.InsertIfAbsent(context.Background(), "abc123")

		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should tolerate inserting an existing key", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewRecentOpsRepo(mockPool)
		mockPool.ExpectExec("INSERT INTO recent_operations").
			WithArgs("abc123").
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		err := repo.InsertIfAbsent(context.Background(), "abc123")

		assert.NoError(t, err)
	})

	t.Run("Should surface store failures", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewRecentOpsRepo(mockPool)
		mockPool.ExpectQuery("SELECT count").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.Exists(context.Background(), "abc123", 10*time.Minute)

		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("Should prune rows older than the retention period", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewRecentOpsRepo(mockPool)
		mockPool.ExpectExec("DELETE FROM recent_operations").
			WithArgs(float64(86400)).
			WillReturnResult(pgxmock.NewResult("DELETE", 42))

		deleted, err := repo.Prune(context.Background(), 24*time.Hour)

		require.NoError(t, err)
		assert.Equal(t, int64(42), deleted)
	})
}
