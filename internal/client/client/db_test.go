package client

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase_CreatesMetadataTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	repo := metadata.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(ctx, "email", []byte("a@b.co")))
	require.NoError(t, repo.Set(ctx, "email", []byte("c@d.co")))

	v, err := repo.Get(ctx, "email")
	require.NoError(t, err)
	assert.Equal(t, []byte("c@d.co"), v)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Get(ctx, "email")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInitDatabase_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, metadata.NewSQLiteRepository(db).Set(ctx, "k", []byte("v")))
	require.NoError(t, db.Close())

	db, err = InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	v, err := metadata.NewSQLiteRepository(db).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
