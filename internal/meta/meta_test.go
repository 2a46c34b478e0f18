package meta

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	m, err := Build(filepath.Join(t.TempDir(), "meta"))
	require.NoError(t, err)

	require.NoError(t, m.Save("test", "content"))
	content, err := m.Load("test")
	require.NoError(t, err)
	require.Equal(t, "content", content)
}

func TestBuildReloadsExistingFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "meta")
	m1, err := Build(dir)
	require.NoError(t, err)
	require.NoError(t, m1.Save("test_1", "content"))
	require.NoError(t, m1.Save("test_2", "content"))

	m2, err := Build(dir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"test_1", "test_2"}, m2.List())
}

func TestDeleteRemovesMeta(t *testing.T) {
	m, err := Build(filepath.Join(t.TempDir(), "meta"))
	require.NoError(t, err)
	require.NoError(t, m.Save("test", "content"))
	require.NoError(t, m.Delete("test"))

	_, err = m.Load("test")
	require.Error(t, err)
}

func TestLoadUnknownNameFails(t *testing.T) {
	m, err := Build(filepath.Join(t.TempDir(), "meta"))
	require.NoError(t, err)
	_, err = m.Load("missing")
	require.Error(t, err)
}

func TestListReturnsMetaNames(t *testing.T) {
	m, err := Build(filepath.Join(t.TempDir(), "meta"))
	require.NoError(t, err)
	require.NoError(t, m.Save("test_1", "content"))
	require.NoError(t, m.Save("test_2", "content"))

	require.ElementsMatch(t, []string{"test_1", "test_2"}, m.List())
}
