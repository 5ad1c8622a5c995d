package database

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0002_b.up.sql":   {Data: []byte("SELECT 2;")},
		"sql/0001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"sql/0001_a.down.sql": {Data: []byte("SELECT 0;")},
		"sql/README.md":       {Data: []byte("docs")},
		"sql/nested/x.up.sql": {Data: []byte("SELECT 3;")},
	}

	names, err := ListMigrations(fsys, "sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.up.sql", "0002_b.up.sql"}, names)
}

func TestListMigrations_MissingDir(t *testing.T) {
	_, err := ListMigrations(fstest.MapFS{}, "missing")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := ListMigrations(Embedded(), ".")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_user_storage.up.sql", names[0])

	body, err := fs.ReadFile(Embedded(), names[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS user_storage")
	assert.Contains(t, string(body), "PRIMARY KEY (user_id, key)")
}

func TestPending(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		applied map[string]bool
		want    []string
	}{
		{name: "fresh database", names: []string{"1.up.sql", "2.up.sql"}, applied: map[string]bool{}, want: []string{"1.up.sql", "2.up.sql"}},
		{name: "partially applied", names: []string{"1.up.sql", "2.up.sql"}, applied: map[string]bool{"1.up.sql": true}, want: []string{"2.up.sql"}},
		{name: "up to date", names: []string{"1.up.sql"}, applied: map[string]bool{"1.up.sql": true}, want: []string{}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Pending(tc.names, tc.applied))
		})
	}
}
