package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(FS, down)
		assert.NoError(t, err, down)
	}
}

func TestProverbsSchema(t *testing.T) {
	data, err := fs.ReadFile(FS, "000001_create_proverbs.up.sql")
	require.NoError(t, err)
	sql := string(data)
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS proverbs")
	// search runs over the in-memory dataset, so the table carries no extra indexes
	assert.NotContains(t, sql, "CREATE INDEX")
}
