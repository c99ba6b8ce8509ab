package teams

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `code,name,conference
HOU,Houston Rockets,West
GSW,Golden State Warriors,West
BOS,Boston Celtics,East
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams.csv"), []byte(sampleCSV), 0o644))
	return dir
}

func TestLoad(t *testing.T) {
	c, err := Load(writeCatalog(t))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	team, ok := c.Get("hou")
	require.True(t, ok)
	assert.Equal(t, "Houston Rockets", team.Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	c, err := Load(writeCatalog(t))
	require.NoError(t, err)

	assert.True(t, c.Valid("HOU"))
	assert.True(t, c.Valid("gsw"))
	assert.False(t, c.Valid("XXX"))
}

func TestEmptyCatalogValidatesEverything(t *testing.T) {
	c := Empty()
	assert.True(t, c.Valid("HOU"))
	assert.True(t, c.Valid("anything"))
}

func TestSearch(t *testing.T) {
	c, err := Load(writeCatalog(t))
	require.NoError(t, err)

	assert.Len(t, c.Search(""), 3)
	assert.Len(t, c.Search("west"), 2)

	found := c.Search("golden state")
	require.Len(t, found, 1)
	assert.Equal(t, "GSW", found[0].Code)

	assert.Empty(t, c.Search("tokyo"))
}
