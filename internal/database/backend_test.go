package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeBuilder/internal/store"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "resume.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewBackend(db)
}

func TestBackend_LoadMissing(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.Load(context.Background(), "resume-data")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBackend_SaveUpserts(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "resume-data", []byte(`{"title":"a"}`)))
	require.NoError(t, b.Save(ctx, "resume-data", []byte(`{"title":"b"}`)))

	data, err := b.Load(ctx, "resume-data")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"b"}`, string(data))

	var count int64
	require.NoError(t, b.db.Model(&Document{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBackend_BacksStore(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	s, err := store.Open(ctx, b)
	require.NoError(t, err)
	_, err = s.ToggleVisibility(ctx, "projects")
	require.NoError(t, err)

	reopened, err := store.Open(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
}
