package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unibuild/pkg/logger"
	"unibuild/pkg/registry"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func staticContext(t *testing.T, repoPath string) *AnalysisContext {
	t.Helper()
	reg, err := registry.New(registry.Options{Mode: registry.ModeStatic, Logger: logger.Nop()})
	require.NoError(t, err)
	return &AnalysisContext{RepoPath: repoPath, Registry: reg, Logger: logger.Nop()}
}

func TestScanSkipsVendoredDirsAndCountsExtensions(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"src/main.rs":               "fn main() {}",
		"src/lib.rs":                "",
		"Cargo.toml":                "[package]\nname = \"x\"\n",
		"node_modules/x/index.js":   "ignored",
		".git/config":               "ignored",
		"target/release/x":          "ignored",
	})
	ac := staticContext(t, root)

	require.NoError(t, (&ScanPhase{}).Execute(context.Background(), ac))

	assert.Equal(t, 2, ac.Scan.Extensions["rs"])
	assert.Zero(t, ac.Scan.Extensions["js"])
	require.Len(t, ac.Scan.Manifests, 1)
	assert.Equal(t, "Cargo.toml", ac.Scan.Manifests[0].Path)
	assert.False(t, ac.Scan.HasFile("node_modules/x/index.js"))
}

func TestScanDemotesLockfilesAndBareSettings(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"package.json":      `{"name":"x"}`,
		"package-lock.json": "{}",
		"settings.gradle":   `rootProject.name = "x"`,
	})
	ac := staticContext(t, root)

	require.NoError(t, (&ScanPhase{}).Execute(context.Background(), ac))

	// Both files stay in the listing but only package.json is a manifest.
	assert.True(t, ac.Scan.HasFile("package-lock.json"))
	assert.True(t, ac.Scan.HasFile("settings.gradle"))
	require.Len(t, ac.Scan.Manifests, 1)
	assert.Equal(t, "package.json", ac.Scan.Manifests[0].Name)
}

func TestScanHonorsGitignore(t *testing.T) {
	root := writeRepo(t, map[string]string{
		".gitignore":    "generated/\n",
		"generated/a.js": "ignored",
		"main.go":       "package main",
		"go.mod":        "module x\n\ngo 1.22\n",
	})
	ac := staticContext(t, root)

	require.NoError(t, (&ScanPhase{}).Execute(context.Background(), ac))
	assert.False(t, ac.Scan.HasFile("generated/a.js"))
	assert.True(t, ac.Scan.HasFile("main.go"))
}

func TestScanManifestAuthorityOrder(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"Cargo.toml":          "[package]\nname = \"x\"\n",
		"tools/package.json":  `{"name":"tools"}`,
	})
	ac := staticContext(t, root)

	require.NoError(t, (&ScanPhase{}).Execute(context.Background(), ac))
	require.Len(t, ac.Scan.Manifests, 2)
	assert.Equal(t, "Cargo.toml", ac.Scan.Manifests[0].Name)
	assert.Equal(t, 1, ac.Scan.Manifests[0].Priority)
}

func TestScanFailsOnMissingPath(t *testing.T) {
	ac := staticContext(t, filepath.Join(t.TempDir(), "nope"))
	err := (&ScanPhase{}).Execute(context.Background(), ac)
	require.Error(t, err)
}
