package utils

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGbkRoundTrip(t *testing.T) {
	gbk, err := Utf8StrToGbk("东湖")
	require.NoError(t, err)
	assert.NotEqual(t, "东湖", gbk)
	assert.Len(t, gbk, 4)
	s, err := GbkStrToUtf8(gbk)
	require.NoError(t, err)
	assert.Equal(t, "东湖", s)
}

func TestGetFilenameWithoutExt(t *testing.T) {
	assert.Equal(t, "zone", GetFilenameWithoutExt("/data/zone.shp"))
	assert.Equal(t, "a.b", GetFilenameWithoutExt("a.b.gpkg"))
	assert.True(t, IsZip("x/ZONE.ZIP"))
	assert.False(t, IsZip("zone.shp"))
}

func TestGetUniqSubDir(t *testing.T) {
	parent := t.TempDir()
	a, err := GetUniqSubDir(parent)
	require.NoError(t, err)
	b, err := GetUniqSubDir(parent)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.DirExists(t, a)
}

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestGetShpInZip(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"zone/zone.shp": "shp",
		"zone/zone.dbf": "dbf",
		"zone/zone.cpg": "utf-8\n",
	})
	dst := t.TempDir()
	shp, utf8, err := GetShpInZip(zipPath, dst)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dst, "zone", "zone.shp"), shp)
	assert.True(t, utf8)
	assert.FileExists(t, filepath.Join(dst, "zone", "zone.dbf"))

	_, _, err = GetShpInZip(writeZip(t, map[string]string{"a.txt": "x"}), t.TempDir())
	assert.ErrorIs(t, err, ErrNoShpInZip)

	parent := t.TempDir()
	dst = filepath.Join(parent, "out")
	_, err = Unzip(writeZip(t, map[string]string{"../evil.shp": "x"}), dst)
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(parent, "evil.shp"))
}

func TestParseBands(t *testing.T) {
	bands, err := ParseBands("3, 1")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, bands)

	bands, err = ParseBands("")
	require.NoError(t, err)
	assert.Nil(t, bands)

	_, err = ParseBands("1,x")
	assert.Error(t, err)
	_, err = ParseBands("0")
	assert.Error(t, err)
}
