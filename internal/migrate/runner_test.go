package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverUpMigrations_Order(t *testing.T) {
	fsys := fstest.MapFS{
		"0010_later_up.sql":    {Data: []byte("SELECT 10")},
		"0002_second_up.sql":   {Data: []byte("SELECT 2")},
		"0002_second_down.sql": {Data: []byte("SELECT -2")},
		"notes.txt":            {Data: []byte("ignored")},
		"abc_up.sql":           {Data: []byte("ignored: no version")},
		"0001_first_up.sql":    {Data: []byte("SELECT 1")},
	}
	files, err := discoverUpMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []int64{1, 2, 10}, []int64{files[0].Version, files[1].Version, files[2].Version})
	assert.Equal(t, "0001_first_up.sql", files[0].Path)
}

func TestEmbedded_ContainsSchema(t *testing.T) {
	files, err := discoverUpMigrations(Embedded())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(files), 2)
	assert.Equal(t, int64(1), files[0].Version)
}

func TestRunner_SourceDefaultsToEmbedded(t *testing.T) {
	files, err := discoverUpMigrations(Runner{}.source())
	require.NoError(t, err)
	assert.NotEmpty(t, files)
}

func TestRunner_SourcePrefersFS(t *testing.T) {
	fsys := fstest.MapFS{"0007_only_up.sql": {Data: []byte("SELECT 7")}}
	files, err := discoverUpMigrations(Runner{FS: fsys}.source())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(7), files[0].Version)
}

func TestParseVersion(t *testing.T) {
	v, ok := parseVersion("0003_add_index_up.sql")
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)

	_, ok = parseVersion("0003_add_index_down.sql")
	assert.False(t, ok)
	_, ok = parseVersion("x_up.sql")
	assert.False(t, ok)
}

func TestPendingSteps(t *testing.T) {
	all := []Step{{Version: 1}, {Version: 2}, {Version: 3}}
	got := pendingSteps(all, map[int64]bool{1: true, 3: true})
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Version)
	assert.Len(t, all, 3)
}
