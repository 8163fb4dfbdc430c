package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "sql/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		data, err := migrationsFS.ReadFile(f)
		require.NoError(t, err)
		body := string(data)
		require.Contains(t, body, "-- +goose Up", f)
		require.Contains(t, body, "-- +goose Down", f)
	}

	initSQL, err := migrationsFS.ReadFile("sql/00001_init.sql")
	require.NoError(t, err)
	for _, table := range []string{"vendors", "rfps", "rfp_vendors", "rfp_dispatches", "proposals"} {
		require.True(t, strings.Contains(string(initSQL), "CREATE TABLE "+table), table)
	}
}
