package orchestrators

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
)

func writeTree(t *testing.T, files map[string]string) (string, *detect.Input) {
	t.Helper()
	root := t.TempDir()
	scan := &types.ScanResult{Extensions: map[string]int{}}
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		scan.Files = append(scan.Files, rel)
	}
	return root, &detect.Input{RepoPath: root, Dir: ".", Scan: scan}
}

func TestTurborepoWorkspace(t *testing.T) {
	root, in := writeTree(t, map[string]string{
		"turbo.json":                `{"tasks":{}}`,
		"package.json":              `{"name":"root","workspaces":["apps/*"]}`,
		"apps/web/package.json":     `{"name":"web","scripts":{"start":"next start"}}`,
		"apps/docs/package.json":    `{"name":"docs"}`,
		"apps/broken/notamanifest":  "",
	})

	turbo := Turborepo()
	assert.True(t, turbo.Detect(in))
	assert.False(t, Nx().Detect(in))

	ws, err := turbo.WorkspaceStructure(root, in)
	require.NoError(t, err)
	assert.Equal(t, types.OrchTurborepo, ws.Orchestrator)
	require.Len(t, ws.Packages, 2)

	byName := map[string]types.Package{}
	for _, p := range ws.Packages {
		byName[p.Name] = p
	}
	assert.True(t, byName["web"].IsApplication)
	assert.False(t, byName["docs"].IsApplication)
	assert.Equal(t, "apps/web", byName["web"].Path)

	assert.Equal(t, "turbo run build --filter=web", turbo.BuildCommand(byName["web"]))
}

func TestLernaDefaultsToPackagesGlob(t *testing.T) {
	root, in := writeTree(t, map[string]string{
		"lerna.json":                 `{"version":"independent"}`,
		"packages/core/package.json": `{"name":"@acme/core"}`,
	})

	lerna := Lerna()
	assert.True(t, lerna.Detect(in))

	ws, err := lerna.WorkspaceStructure(root, in)
	require.NoError(t, err)
	require.Len(t, ws.Packages, 1)
	assert.Equal(t, "@acme/core", ws.Packages[0].Name)
}

func TestOrchestratorWithoutPackagesErrors(t *testing.T) {
	root, in := writeTree(t, map[string]string{"nx.json": `{}`})
	_, err := Nx().WorkspaceStructure(root, in)
	assert.Error(t, err)
}
