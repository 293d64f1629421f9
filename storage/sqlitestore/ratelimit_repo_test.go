package sqlitestore

import (
	"context"
	"sync"
	"testing"
	"time"

	autherrors "github.com/jrsteele09/go-auth-bridge/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitRepo_GetMissing(t *testing.T) {
	repo := NewRateLimitRepo(setupTestDB(t))

	rec, err := repo.Get(context.Background(), "192.0.2.1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRateLimitRepo_Lifecycle(t *testing.T) {
	repo := NewRateLimitRepo(setupTestDB(t))
	ctx := context.Background()
	const ip = "203.0.113.7"

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Increment(ctx, ip))
	}
	rec, err := repo.Get(ctx, ip)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(3), rec.Attempts)
	assert.Nil(t, rec.LastAttemptAt)

	at := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	require.NoError(t, repo.MarkLockout(ctx, ip, at))
	rec, err = repo.Get(ctx, ip)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.Attempts)
	require.NotNil(t, rec.LastAttemptAt)
	assert.True(t, rec.LastAttemptAt.Equal(at))

	later := at.Add(31 * time.Minute)
	require.NoError(t, repo.Restart(ctx, ip, later))
	rec, err = repo.Get(ctx, ip)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Attempts)
	assert.True(t, rec.LastAttemptAt.Equal(later))

	require.NoError(t, repo.Delete(ctx, ip))
	require.NoError(t, repo.Delete(ctx, ip))
	rec, err = repo.Get(ctx, ip)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRateLimitRepo_StampsDoNotCreateRecords(t *testing.T) {
	repo := NewRateLimitRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.MarkLockout(ctx, "192.0.2.9", time.Now()))
	require.NoError(t, repo.Restart(ctx, "192.0.2.9", time.Now()))

	rec, err := repo.Get(ctx, "192.0.2.9")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRateLimitRepo_ConcurrentIncrements(t *testing.T) {
	repo := NewRateLimitRepo(setupTestDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Increment(ctx, "198.51.100.2"))
		}()
	}
	wg.Wait()

	rec, err := repo.Get(ctx, "198.51.100.2")
	require.NoError(t, err)
	assert.Equal(t, int64(20), rec.Attempts)
}

func TestRateLimitRepo_ClosedDB(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRateLimitRepo(db)
	require.NoError(t, db.Close())

	_, err := repo.Get(context.Background(), "192.0.2.1")
	assert.ErrorIs(t, err, autherrors.ErrStorageFailure)
	assert.Contains(t, err.Error(), "[sqlitestore] query rate_limits:")
	assert.ErrorIs(t, repo.Increment(context.Background(), "192.0.2.1"), autherrors.ErrStorageFailure)
}
