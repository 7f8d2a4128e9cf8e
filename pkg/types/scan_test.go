package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortManifests(t *testing.T) {
	ms := []ManifestCandidate{
		{Path: "b/package.json", Name: "package.json", Priority: 3},
		{Path: "pom.xml", Name: "pom.xml", Priority: 1},
		{Path: "a/package.json", Name: "package.json", Priority: 3},
		{Path: "package.json", Name: "package.json", Priority: 3},
	}
	SortManifests(ms)

	// Ascending priority, then shorter path, then lexicographic.
	assert.Equal(t, "pom.xml", ms[0].Path)
	assert.Equal(t, "package.json", ms[1].Path)
	assert.Equal(t, "a/package.json", ms[2].Path)
	assert.Equal(t, "b/package.json", ms[3].Path)
}

func TestScanResultQueries(t *testing.T) {
	s := &ScanResult{
		Files: []string{"Cargo.toml", "src/main.rs", "api/pom.xml", "api/src/App.java"},
		Manifests: []ManifestCandidate{
			{Path: "Cargo.toml", Name: "Cargo.toml", Priority: 1},
			{Path: "api/pom.xml", Name: "pom.xml", Priority: 1},
		},
	}

	primary, ok := s.PrimaryManifest()
	assert.True(t, ok)
	assert.Equal(t, "Cargo.toml", primary.Path)
	assert.Equal(t, ".", primary.Dir())

	assert.Len(t, s.ManifestsIn("api"), 1)
	assert.Empty(t, s.ManifestsIn("src"))

	assert.Equal(t, []string{"api/pom.xml", "api/src/App.java"}, s.FilesUnder("api"))
	assert.Len(t, s.FilesUnder("."), 4)
	assert.True(t, s.HasFile("src/main.rs"))
	assert.False(t, s.HasFile("main.rs"))
}
