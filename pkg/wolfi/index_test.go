package wolfi

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticIndex(t *testing.T) {
	idx := NewStaticIndex("nodejs-22", "nodejs-20", "nodejs-18", "nodejs-22-doc", "glibc", "ca-certificates")

	assert.True(t, idx.HasPackage("glibc"))
	assert.False(t, idx.HasPackage("glibcc"))

	// Subpackages with a second dash segment do not count as versions.
	assert.Equal(t, []string{"22", "20", "18"}, idx.GetVersions("nodejs"))

	latest, ok := idx.GetLatestVersion("nodejs")
	require.True(t, ok)
	assert.Equal(t, "22", latest)

	_, ok = idx.GetLatestVersion("dotnet")
	assert.False(t, ok)
}

func TestParseAPKIndexArchive(t *testing.T) {
	index := "C:abc\nP:nodejs-22\nV:22.11.0-r1\n\nC:def\nP:glibc\nV:2.39-r0\n\n"

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "APKINDEX", Mode: 0o644, Size: int64(len(index))}))
	_, err := tw.Write([]byte(index))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	names, err := ParseAPKIndexArchive(&buf)
	require.NoError(t, err)
	assert.Len(t, names, 2)
	assert.Contains(t, names, "nodejs-22")
	assert.Contains(t, names, "glibc")
}

func TestSuggest(t *testing.T) {
	idx := NewStaticIndex("nodejs-22", "openjdk-21", "glibc")

	got, ok := Suggest(idx, "openjdk-12")
	assert.True(t, ok)
	assert.Equal(t, "openjdk-21", got)

	_, ok = Suggest(idx, "completely-unrelated-name")
	assert.False(t, ok)
}
