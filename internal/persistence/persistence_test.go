package persistence

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/store"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	mem, err := Open(ctx, config.Config{Persistence: config.PersistenceConfig{Driver: config.DriverMemory}}, nil, quiet())
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryBackend{}, mem)

	file, err := Open(ctx, config.Config{Persistence: config.PersistenceConfig{Driver: config.DriverFile, FilePath: dir}}, nil, quiet())
	require.NoError(t, err)
	assert.IsType(t, &store.FileBackend{}, file)

	lite, err := Open(ctx, config.Config{Persistence: config.PersistenceConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(dir, "nested", "resume.db"),
	}}, nil, quiet())
	require.NoError(t, err)
	assert.IsType(t, &database.Backend{}, lite)
}

func TestOpen_RedisNeedsClient(t *testing.T) {
	_, err := Open(context.Background(), config.Config{Persistence: config.PersistenceConfig{Driver: config.DriverRedis}}, nil, quiet())
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{Persistence: config.PersistenceConfig{Driver: "tape"}}, nil, quiet())
	assert.ErrorContains(t, err, "unknown persistence driver")
}
