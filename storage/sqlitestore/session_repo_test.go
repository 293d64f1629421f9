package sqlitestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_PutOverwrites(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))
	ctx := context.Background()

	rec, err := repo.Get(ctx, "did:plc:alice")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, repo.Put(ctx, "did:plc:alice", `{"v":1}`))
	require.NoError(t, repo.Put(ctx, "did:plc:alice", `{"v":2}`))
	require.NoError(t, repo.Put(ctx, "did:plc:bob", `{"v":3}`))

	rec, err = repo.Get(ctx, "did:plc:alice")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "did:plc:alice", rec.SubjectID)
	assert.Equal(t, `{"v":2}`, rec.SerializedSession)

	var count int
	require.NoError(t, repo.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, RunMigrations(db.Writer))
}
