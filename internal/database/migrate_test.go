package database

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsStartAtInit(t *testing.T) {
	src, err := migrationSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, identifier, err := src.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "init", identifier)

	body, err := io.ReadAll(up)
	require.NoError(t, err)
	for _, table := range []string{"categories", "works", "work_images"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, string(body), "ON DELETE SET NULL")
	assert.Contains(t, string(body), "ON DELETE CASCADE")

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	defer down.Close()
	body, err = io.ReadAll(down)
	require.NoError(t, err)
	assert.Contains(t, string(body), "DROP TABLE IF EXISTS work_images")
}

func TestEveryMigrationHasADownFile(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(migrationsFS, down)
		assert.NoError(t, err, "missing %s", down)
	}

	all, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Len(t, all, 2*len(ups), "only up/down pairs belong in migrations/")
}

func TestMigrationSourceEndsAfterLastVersion(t *testing.T) {
	src, err := migrationSource()
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Next(1)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
}

func TestMigrateLogger(t *testing.T) {
	var buf bytes.Buffer
	debug := migrateLogger{log: zerolog.New(&buf).Level(zerolog.DebugLevel)}
	assert.True(t, debug.Verbose())
	debug.Printf("1/u init (12.3ms)\n")
	assert.Contains(t, buf.String(), `"message":"1/u init (12.3ms)"`)
	assert.Contains(t, buf.String(), `"component":"migrate"`)

	buf.Reset()
	info := migrateLogger{log: zerolog.New(&buf).Level(zerolog.InfoLevel)}
	assert.False(t, info.Verbose())
	info.Printf("hidden")
	assert.Empty(t, buf.String())
}
