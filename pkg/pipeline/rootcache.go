package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
)

// orchestratorCaches are the workspace-level caches each orchestrator
// maintains at the repository root.
var orchestratorCaches = map[types.OrchestratorID][]string{
	types.OrchTurborepo: {"node_modules", ".turbo"},
	types.OrchNx:        {"node_modules", ".nx/cache"},
	types.OrchLerna:     {"node_modules"},
}

// buildSystemRootCaches are the shared package stores mounted at the
// workspace root for multi-package builds.
var buildSystemRootCaches = map[types.BuildSystemID][]string{
	types.BuildNpm:    {"~/.npm"},
	types.BuildYarn:   {".yarn/cache"},
	types.BuildPnpm:   {"~/.local/share/pnpm/store"},
	types.BuildBun:    {"~/.bun/install/cache"},
	types.BuildCargo:  {"~/.cargo/registry", "target/"},
	types.BuildGradle: {"~/.gradle"},
	types.BuildMaven:  {"~/.m2/repository"},
}

// RootCachePhase computes the build-time cache mounts shared across a
// monorepo's services. Single-package repositories carry their caches on
// the service itself. Strictly deterministic: only detectors that claim
// manifest filenames participate, which excludes the LLM tail.
type RootCachePhase struct{}

func (p *RootCachePhase) Name() string { return "root_cache" }

func (p *RootCachePhase) Execute(_ context.Context, ac *AnalysisContext) error {
	ws := ac.Workspace
	if ws == nil || (ws.Orchestrator == "" && len(ws.Packages) <= 1) {
		return nil
	}

	seen := map[string]bool{}
	add := func(dirs []string) {
		for _, d := range dirs {
			if !seen[d] {
				seen[d] = true
				ac.RootCaches = append(ac.RootCaches, d)
			}
		}
	}

	if ws.Orchestrator != "" {
		add(orchestratorCaches[ws.Orchestrator])
	}
	if id, ok := p.rootBuildSystem(ac); ok {
		add(buildSystemRootCaches[id])
	}

	ac.Logger.Debug().Str("phase", p.Name()).Strs("caches", ac.RootCaches).Msg("root caches resolved")
	return nil
}

// rootBuildSystem detects which known build system owns the root manifest.
func (p *RootCachePhase) rootBuildSystem(ac *AnalysisContext) (types.BuildSystemID, bool) {
	manifest, ok := ac.Scan.PrimaryManifest()
	if !ok {
		return "", false
	}
	content, err := os.ReadFile(filepath.Join(ac.RepoPath, filepath.FromSlash(manifest.Path)))
	if err != nil {
		return "", false
	}
	in := &detect.Input{
		RepoPath: ac.RepoPath, Dir: manifest.Dir(), Scan: ac.Scan,
		Manifest: &manifest, ManifestContent: content,
	}
	for _, bs := range ac.Registry.BuildSystems() {
		if len(bs.Manifests()) == 0 {
			continue
		}
		if id, ok := bs.Detect(in); ok {
			return id, true
		}
	}
	return "", false
}
