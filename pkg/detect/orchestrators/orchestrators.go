// Package orchestrators holds the monorepo orchestrator detectors. Each is
// keyed by its config file at the repo root and derives the workspace
// package set from the underlying JavaScript workspace declaration.
package orchestrators

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"unibuild/pkg/detect"
	"unibuild/pkg/types"
)

type orchestrator struct {
	id          types.OrchestratorID
	configFiles []string
	buildCmd    func(pkg types.Package) string
	// patternsFn extracts member patterns; defaults to the JS workspace
	// declaration when nil.
	patternsFn func(repoPath string) []string
}

func (o *orchestrator) ID() types.OrchestratorID { return o.id }

func (o *orchestrator) Detect(in *detect.Input) bool {
	for _, name := range o.configFiles {
		if in.Scan != nil && in.Scan.HasFile(name) {
			return true
		}
	}
	return false
}

func (o *orchestrator) BuildCommand(pkg types.Package) string { return o.buildCmd(pkg) }

func (o *orchestrator) WorkspaceStructure(repoPath string, _ *detect.Input) (*types.WorkspaceStructure, error) {
	patterns := jsWorkspacePatterns(repoPath)
	if o.patternsFn != nil {
		if p := o.patternsFn(repoPath); len(p) > 0 {
			patterns = p
		}
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%s: no workspace patterns declared", o.id)
	}

	ws := &types.WorkspaceStructure{Orchestrator: o.id}
	for _, pattern := range patterns {
		dirs, err := expandPattern(repoPath, pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: expanding %q: %w", o.id, pattern, err)
		}
		for _, dir := range dirs {
			manifest := filepath.Join(dir, "package.json")
			data, err := os.ReadFile(manifest)
			if err != nil {
				continue
			}
			rel, err := filepath.Rel(repoPath, dir)
			if err != nil {
				return nil, err
			}
			name, isApp := packageMetadata(data)
			if name == "" {
				name = filepath.Base(dir)
			}
			ws.Packages = append(ws.Packages, types.Package{
				Path: filepath.ToSlash(rel), Name: name, IsApplication: isApp,
			})
		}
	}
	if len(ws.Packages) == 0 {
		return nil, fmt.Errorf("%s: workspace patterns matched no packages", o.id)
	}
	return ws, nil
}

// All returns the known orchestrators in registry order.
func All() []detect.Orchestrator {
	return []detect.Orchestrator{Turborepo(), Nx(), Lerna()}
}

func Turborepo() detect.Orchestrator {
	return &orchestrator{
		id:          types.OrchTurborepo,
		configFiles: []string{"turbo.json"},
		buildCmd: func(pkg types.Package) string {
			return "turbo run build --filter=" + pkg.Name
		},
	}
}

func Nx() detect.Orchestrator {
	return &orchestrator{
		id:          types.OrchNx,
		configFiles: []string{"nx.json"},
		buildCmd: func(pkg types.Package) string {
			return "nx build " + pkg.Name
		},
	}
}

func Lerna() detect.Orchestrator {
	return &orchestrator{
		id:          types.OrchLerna,
		configFiles: []string{"lerna.json"},
		buildCmd: func(pkg types.Package) string {
			return "lerna run build --scope " + pkg.Name
		},
		patternsFn: lernaPatterns,
	}
}

func lernaPatterns(repoPath string) []string {
	data, err := os.ReadFile(filepath.Join(repoPath, "lerna.json"))
	if err != nil {
		return nil
	}
	var cfg struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil || len(cfg.Packages) == 0 {
		return []string{"packages/*"}
	}
	return cfg.Packages
}

// jsWorkspacePatterns reads the workspace member globs from package.json
// or pnpm-workspace.yaml at the repo root.
func jsWorkspacePatterns(repoPath string) []string {
	if data, err := os.ReadFile(filepath.Join(repoPath, "package.json")); err == nil {
		var pkg struct {
			Workspaces json.RawMessage `json:"workspaces"`
		}
		if json.Unmarshal(data, &pkg) == nil && len(pkg.Workspaces) > 0 {
			var arr []string
			if json.Unmarshal(pkg.Workspaces, &arr) == nil && len(arr) > 0 {
				return arr
			}
			var obj struct {
				Packages []string `json:"packages"`
			}
			if json.Unmarshal(pkg.Workspaces, &obj) == nil && len(obj.Packages) > 0 {
				return obj.Packages
			}
		}
	}
	if data, err := os.ReadFile(filepath.Join(repoPath, "pnpm-workspace.yaml")); err == nil {
		var ws struct {
			Packages []string `yaml:"packages"`
		}
		if yaml.Unmarshal(data, &ws) == nil {
			return ws.Packages
		}
	}
	return nil
}

func packageMetadata(manifest []byte) (string, bool) {
	var pkg struct {
		Name    string            `json:"name"`
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(manifest, &pkg); err != nil {
		return "", false
	}
	_, isApp := pkg.Scripts["start"]
	return pkg.Name, isApp
}

// expandPattern mirrors the workspace glob expansion of the build systems:
// filepath.Glob plus one-level ** flattening.
func expandPattern(root, pattern string) ([]string, error) {
	pattern = strings.TrimSuffix(strings.TrimSpace(pattern), "/")
	if pattern == "" {
		return nil, nil
	}
	if strings.HasSuffix(pattern, "/**") {
		pattern = strings.TrimSuffix(pattern, "/**") + "/*"
	}
	matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			dirs = append(dirs, m)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
